package reference

import "github.com/sells-group/permit-cli/internal/model"

// Confidence defaults.
const (
	DefaultDirectConfidence   = 0.95
	DefaultFallbackConfidence = 0.40
)

func defaultTrades() []model.Trade {
	return []model.Trade{
		{ID: 1, Slug: "excavation", Name: "Excavation", Icon: "shovel", Color: "#8d6e63", SortOrder: 1},
		{ID: 2, Slug: "shoring", Name: "Shoring", Icon: "columns", Color: "#6d4c41", SortOrder: 2},
		{ID: 3, Slug: "demolition", Name: "Demolition", Icon: "hammer", Color: "#d84315", SortOrder: 3},
		{ID: 4, Slug: "concrete", Name: "Concrete", Icon: "cube", Color: "#9e9e9e", SortOrder: 4},
		{ID: 5, Slug: "waterproofing", Name: "Waterproofing", Icon: "droplet", Color: "#0277bd", SortOrder: 5},
		{ID: 6, Slug: "drain-plumbing", Name: "Drain & Sewer", Icon: "pipe", Color: "#4e342e", SortOrder: 6},
		{ID: 7, Slug: "temporary-fencing", Name: "Temporary Fencing", Icon: "barrier", Color: "#ff8f00", SortOrder: 7},
		{ID: 8, Slug: "framing", Name: "Framing", Icon: "frame", Color: "#a1887f", SortOrder: 8},
		{ID: 9, Slug: "structural-steel", Name: "Structural Steel", Icon: "beam", Color: "#546e7a", SortOrder: 9},
		{ID: 10, Slug: "masonry", Name: "Masonry", Icon: "brick", Color: "#bf360c", SortOrder: 10},
		{ID: 11, Slug: "roofing", Name: "Roofing", Icon: "roof", Color: "#37474f", SortOrder: 11},
		{ID: 12, Slug: "plumbing", Name: "Plumbing", Icon: "faucet", Color: "#1565c0", SortOrder: 12},
		{ID: 13, Slug: "hvac", Name: "HVAC", Icon: "fan", Color: "#00838f", SortOrder: 13},
		{ID: 14, Slug: "electrical", Name: "Electrical", Icon: "bolt", Color: "#f9a825", SortOrder: 14},
		{ID: 15, Slug: "fire-protection", Name: "Fire Protection", Icon: "fire-extinguisher", Color: "#c62828", SortOrder: 15},
		{ID: 16, Slug: "elevator", Name: "Elevator", Icon: "elevator", Color: "#455a64", SortOrder: 16},
		{ID: 17, Slug: "glazing", Name: "Glazing & Windows", Icon: "window", Color: "#4fc3f7", SortOrder: 17},
		{ID: 18, Slug: "insulation", Name: "Insulation", Icon: "layers", Color: "#f48fb1", SortOrder: 18},
		{ID: 19, Slug: "drywall", Name: "Drywall", Icon: "square", Color: "#bdbdbd", SortOrder: 19},
		{ID: 20, Slug: "painting", Name: "Painting", Icon: "paint-roller", Color: "#7b1fa2", SortOrder: 20},
		{ID: 21, Slug: "flooring", Name: "Flooring", Icon: "grid", Color: "#795548", SortOrder: 21},
		{ID: 22, Slug: "tiling", Name: "Tiling", Icon: "tiles", Color: "#26a69a", SortOrder: 22},
		{ID: 23, Slug: "trim-work", Name: "Trim & Finish Carpentry", Icon: "ruler", Color: "#8d6e63", SortOrder: 23},
		{ID: 24, Slug: "millwork-cabinetry", Name: "Millwork & Cabinetry", Icon: "cabinet", Color: "#5d4037", SortOrder: 24},
		{ID: 25, Slug: "stone-countertops", Name: "Stone & Countertops", Icon: "gem", Color: "#78909c", SortOrder: 25},
		{ID: 26, Slug: "caulking", Name: "Caulking & Sealants", Icon: "seal", Color: "#90a4ae", SortOrder: 26},
		{ID: 27, Slug: "security", Name: "Security Systems", Icon: "shield", Color: "#283593", SortOrder: 27},
		{ID: 28, Slug: "eavestrough-siding", Name: "Eavestrough & Siding", Icon: "gutter", Color: "#607d8b", SortOrder: 28},
		{ID: 29, Slug: "decking-fences", Name: "Decking & Fences", Icon: "fence", Color: "#a1887f", SortOrder: 29},
		{ID: 30, Slug: "landscaping", Name: "Landscaping", Icon: "tree", Color: "#2e7d32", SortOrder: 30},
		{ID: 31, Slug: "paving", Name: "Paving", Icon: "road", Color: "#424242", SortOrder: 31},
		{ID: 32, Slug: "pool-installation", Name: "Pool Installation", Icon: "water", Color: "#0288d1", SortOrder: 32},
		{ID: 33, Slug: "solar", Name: "Solar", Icon: "sun", Color: "#fbc02d", SortOrder: 33},
	}
}

func defaultPhaseTrades() map[model.Phase][]string {
	return map[model.Phase][]string{
		model.PhaseEarlyConstruction: {
			"excavation", "shoring", "demolition", "concrete", "waterproofing",
			"drain-plumbing", "temporary-fencing",
		},
		model.PhaseStructural: {
			"concrete", "framing", "structural-steel", "masonry", "roofing",
			"plumbing", "hvac", "electrical", "fire-protection", "elevator",
			"glazing", "insulation", "waterproofing",
		},
		model.PhaseFinishing: {
			"plumbing", "hvac", "electrical", "insulation", "drywall", "painting",
			"flooring", "tiling", "trim-work", "millwork-cabinetry",
			"stone-countertops", "caulking", "security", "glazing",
			"fire-protection", "elevator",
		},
		model.PhaseLandscaping: {
			"landscaping", "paving", "decking-fences", "eavestrough-siding",
			"pool-installation", "solar", "painting", "caulking",
		},
	}
}

func defaultProducts() []model.ProductGroup {
	return []model.ProductGroup{
		{ID: 1, Slug: "lumber", Name: "Lumber & Sheathing", SortOrder: 1},
		{ID: 2, Slug: "ready-mix", Name: "Ready-Mix Concrete", SortOrder: 2},
		{ID: 3, Slug: "rebar", Name: "Rebar & Reinforcement", SortOrder: 3},
		{ID: 4, Slug: "roofing-materials", Name: "Roofing Materials", SortOrder: 4},
		{ID: 5, Slug: "windows", Name: "Windows", SortOrder: 5},
		{ID: 6, Slug: "doors", Name: "Doors", SortOrder: 6},
		{ID: 7, Slug: "garage-doors", Name: "Garage Doors", SortOrder: 7},
		{ID: 8, Slug: "insulation-materials", Name: "Insulation Materials", SortOrder: 8},
		{ID: 9, Slug: "drywall-supplies", Name: "Drywall Supplies", SortOrder: 9},
		{ID: 10, Slug: "paint", Name: "Paint & Coatings", SortOrder: 10},
		{ID: 11, Slug: "flooring-materials", Name: "Flooring", SortOrder: 11},
		{ID: 12, Slug: "tile", Name: "Tile", SortOrder: 12},
		{ID: 13, Slug: "kitchen-cabinets", Name: "Kitchen Cabinets", SortOrder: 13},
		{ID: 14, Slug: "countertops", Name: "Countertops", SortOrder: 14},
		{ID: 15, Slug: "appliances", Name: "Appliances", SortOrder: 15},
		{ID: 16, Slug: "plumbing-fixtures", Name: "Plumbing Fixtures", SortOrder: 16},
		{ID: 17, Slug: "hvac-equipment", Name: "HVAC Equipment", SortOrder: 17},
		{ID: 18, Slug: "lighting", Name: "Lighting & Electrical Fixtures", SortOrder: 18},
		{ID: 19, Slug: "decking-materials", Name: "Decking Materials", SortOrder: 19},
		{ID: 20, Slug: "fencing-materials", Name: "Fencing Materials", SortOrder: 20},
		{ID: 21, Slug: "railings", Name: "Railings", SortOrder: 21},
		{ID: 22, Slug: "stairs", Name: "Stairs", SortOrder: 22},
		{ID: 23, Slug: "landscape-supplies", Name: "Landscape Supplies", SortOrder: 23},
		{ID: 24, Slug: "pool-equipment", Name: "Pool Equipment", SortOrder: 24},
		{ID: 25, Slug: "solar-panels", Name: "Solar Panels", SortOrder: 25},
		{ID: 26, Slug: "fireplaces", Name: "Fireplaces", SortOrder: 26},
		{ID: 27, Slug: "waterproofing-membranes", Name: "Waterproofing Membranes", SortOrder: 27},
		{ID: 28, Slug: "structural-steel", Name: "Structural Steel", SortOrder: 28},
		{ID: 29, Slug: "elevators", Name: "Elevators & Lifts", SortOrder: 29},
		{ID: 30, Slug: "fire-safety", Name: "Fire Safety Equipment", SortOrder: 30},
	}
}
