package reference

// defaultTagTrades maps normalized scope-tag keys (prefix stripped,
// houseplex-N-unit collapsed to houseplex) to the trades they imply.
func defaultTagTrades() map[string][]TagWeight {
	return map[string][]TagWeight{
		// Structural.
		"foundation":        {{"excavation", 0.80}, {"concrete", 0.90}, {"waterproofing", 0.75}},
		"underpinning":      {{"shoring", 0.90}, {"concrete", 0.90}, {"excavation", 0.85}, {"waterproofing", 0.70}},
		"structural":        {{"structural-steel", 0.75}, {"framing", 0.70}, {"concrete", 0.60}},
		"structural-beam":   {{"structural-steel", 0.85}, {"framing", 0.75}, {"drywall", 0.55}},
		"excavation":        {{"excavation", 0.90}, {"shoring", 0.50}},
		"shoring":           {{"shoring", 0.90}, {"excavation", 0.70}},
		"retaining-wall":    {{"concrete", 0.80}, {"masonry", 0.70}, {"landscaping", 0.60}},
		"addition":          {{"framing", 0.85}, {"concrete", 0.75}, {"roofing", 0.70}, {"electrical", 0.65}, {"drywall", 0.70}, {"insulation", 0.65}},
		"1-storey-addition": {{"framing", 0.85}, {"concrete", 0.80}, {"roofing", 0.75}, {"excavation", 0.65},
			{"electrical", 0.65}, {"insulation", 0.70}, {"drywall", 0.70}, {"painting", 0.55}},
		"2-storey-addition": {{"framing", 0.90}, {"concrete", 0.80}, {"roofing", 0.75}, {"excavation", 0.65},
			{"electrical", 0.70}, {"plumbing", 0.55}, {"hvac", 0.60}, {"insulation", 0.75}, {"drywall", 0.75}, {"painting", 0.55}},
		"3-storey-addition": {{"framing", 0.90}, {"concrete", 0.85}, {"structural-steel", 0.60}, {"roofing", 0.75},
			{"excavation", 0.70}, {"electrical", 0.70}, {"plumbing", 0.60}, {"hvac", 0.65}, {"insulation", 0.75}, {"drywall", 0.75}},
		"demolition": {{"demolition", 0.90}, {"excavation", 0.60}, {"temporary-fencing", 0.60}},

		// Exterior.
		"roofing":       {{"roofing", 0.90}, {"eavestrough-siding", 0.50}},
		"cladding":      {{"eavestrough-siding", 0.85}, {"masonry", 0.50}, {"caulking", 0.55}},
		"windows":       {{"glazing", 0.85}, {"caulking", 0.55}},
		"doors":         {{"glazing", 0.50}, {"trim-work", 0.60}},
		"balcony":       {{"concrete", 0.65}, {"waterproofing", 0.70}, {"glazing", 0.50}},
		"deck":          {{"decking-fences", 0.90}, {"framing", 0.55}},
		"porch":         {{"decking-fences", 0.75}, {"framing", 0.65}, {"concrete", 0.60}, {"roofing", 0.50}},
		"garage":        {{"framing", 0.80}, {"concrete", 0.80}, {"roofing", 0.70}, {"electrical", 0.55}},
		"carport":       {{"framing", 0.70}, {"concrete", 0.60}, {"roofing", 0.55}},
		"canopy":        {{"framing", 0.60}, {"structural-steel", 0.55}, {"roofing", 0.55}},
		"fence":         {{"decking-fences", 0.90}},
		"landscaping":   {{"landscaping", 0.90}, {"paving", 0.60}},
		"parking":       {{"paving", 0.85}, {"concrete", 0.65}, {"electrical", 0.40}},
		"storefront":    {{"glazing", 0.85}, {"trim-work", 0.50}, {"electrical", 0.50}},
		"signage":       {{"electrical", 0.70}},
		"solar":         {{"solar", 0.95}, {"electrical", 0.70}, {"roofing", 0.50}},
		"pool":          {{"pool-installation", 0.95}, {"excavation", 0.75}, {"concrete", 0.60}, {"landscaping", 0.55}, {"electrical", 0.50}},
		"masonry":       {{"masonry", 0.90}},
		"waterproofing": {{"waterproofing", 0.90}},
		"walkout":       {{"excavation", 0.80}, {"concrete", 0.75}, {"waterproofing", 0.70}, {"glazing", 0.50}},
		"dormer":        {{"framing", 0.85}, {"roofing", 0.85}, {"glazing", 0.55}, {"insulation", 0.60}, {"drywall", 0.55}},
		"laneway-suite": {{"framing", 0.85}, {"concrete", 0.80}, {"excavation", 0.70}, {"plumbing", 0.80},
			{"electrical", 0.80}, {"hvac", 0.75}, {"roofing", 0.70}, {"drywall", 0.70}},
		"accessory-building": {{"framing", 0.75}, {"concrete", 0.65}, {"roofing", 0.60}},

		// Interior.
		"interior-alterations": {{"framing", 0.60}, {"drywall", 0.80}, {"painting", 0.75}, {"electrical", 0.65},
			{"plumbing", 0.50}, {"flooring", 0.60}, {"trim-work", 0.60}},
		"kitchen":           {{"millwork-cabinetry", 0.90}, {"stone-countertops", 0.85}, {"plumbing", 0.80}, {"electrical", 0.75}, {"tiling", 0.65}},
		"bathroom":          {{"plumbing", 0.90}, {"tiling", 0.85}, {"electrical", 0.60}, {"drywall", 0.55}, {"stone-countertops", 0.50}},
		"laundry":           {{"plumbing", 0.80}, {"electrical", 0.60}, {"tiling", 0.50}},
		"basement":          {{"waterproofing", 0.70}, {"drywall", 0.75}, {"framing", 0.65}, {"electrical", 0.65}, {"insulation", 0.65}, {"flooring", 0.60}},
		"finished-basement": {{"drywall", 0.80}, {"framing", 0.65}, {"electrical", 0.70}, {"insulation", 0.70}, {"flooring", 0.65}, {"painting", 0.60}},
		"second-suite":      {{"plumbing", 0.85}, {"electrical", 0.85}, {"drywall", 0.80}, {"fire-protection", 0.70},
			{"hvac", 0.65}, {"framing", 0.60}, {"millwork-cabinetry", 0.60}},
		"unit-conversion": {{"plumbing", 0.70}, {"electrical", 0.75}, {"drywall", 0.70}, {"fire-protection", 0.65}},
		"open-concept":    {{"structural-steel", 0.70}, {"framing", 0.75}, {"drywall", 0.75}, {"flooring", 0.55}},
		"fireplace":       {{"masonry", 0.75}, {"hvac", 0.55}},
		"fire-damage":     {{"demolition", 0.60}, {"framing", 0.75}, {"drywall", 0.80}, {"electrical", 0.70}, {"painting", 0.70}, {"roofing", 0.50}},
		"stairs":          {{"framing", 0.65}, {"trim-work", 0.70}},
		"tenant-fitout":   {{"drywall", 0.80}, {"electrical", 0.75}, {"hvac", 0.65}, {"painting", 0.70}, {"flooring", 0.70}, {"fire-protection", 0.55}},
		"restaurant":      {{"plumbing", 0.80}, {"hvac", 0.85}, {"fire-protection", 0.70}, {"tiling", 0.60}, {"electrical", 0.70}},
		"flooring":        {{"flooring", 0.90}},

		// Building types.
		"sfd": {{"excavation", 0.85}, {"concrete", 0.90}, {"framing", 0.95}, {"roofing", 0.90}, {"plumbing", 0.90},
			{"hvac", 0.90}, {"electrical", 0.90}, {"insulation", 0.85}, {"drywall", 0.90}, {"painting", 0.85},
			{"flooring", 0.80}, {"millwork-cabinetry", 0.75}, {"glazing", 0.75}, {"landscaping", 0.60}},
		"semi-detached": {{"excavation", 0.85}, {"concrete", 0.90}, {"framing", 0.95}, {"roofing", 0.90}, {"plumbing", 0.90},
			{"hvac", 0.90}, {"electrical", 0.90}, {"insulation", 0.85}, {"drywall", 0.90}, {"painting", 0.85}, {"masonry", 0.60}},
		"townhouse": {{"excavation", 0.85}, {"concrete", 0.90}, {"framing", 0.90}, {"roofing", 0.85}, {"plumbing", 0.90},
			{"hvac", 0.90}, {"electrical", 0.90}, {"drywall", 0.90}, {"fire-protection", 0.55}, {"masonry", 0.60}},
		"stacked-townhouse": {{"excavation", 0.85}, {"concrete", 0.90}, {"framing", 0.85}, {"structural-steel", 0.50},
			{"plumbing", 0.90}, {"hvac", 0.90}, {"electrical", 0.90}, {"drywall", 0.90}, {"fire-protection", 0.70}},
		"houseplex": {{"excavation", 0.85}, {"concrete", 0.90}, {"framing", 0.90}, {"roofing", 0.85}, {"plumbing", 0.90},
			{"hvac", 0.85}, {"electrical", 0.90}, {"drywall", 0.90}, {"fire-protection", 0.75}},
		"house":         {{"framing", 0.60}, {"roofing", 0.50}, {"plumbing", 0.50}, {"electrical", 0.50}},
		"condo":         {{"concrete", 0.85}, {"structural-steel", 0.70}, {"elevator", 0.80}, {"fire-protection", 0.85}, {"glazing", 0.75}, {"hvac", 0.75}},
		"apartment":     {{"concrete", 0.85}, {"elevator", 0.70}, {"fire-protection", 0.85}, {"plumbing", 0.75}, {"electrical", 0.75}, {"hvac", 0.75}},
		"office":        {{"hvac", 0.75}, {"electrical", 0.75}, {"drywall", 0.70}, {"fire-protection", 0.60}, {"security", 0.55}},
		"retail":        {{"glazing", 0.60}, {"electrical", 0.70}, {"hvac", 0.65}, {"flooring", 0.60}, {"security", 0.50}},
		"warehouse":     {{"concrete", 0.80}, {"structural-steel", 0.80}, {"roofing", 0.70}, {"paving", 0.55}, {"fire-protection", 0.70}},
		"industrial":    {{"concrete", 0.80}, {"structural-steel", 0.80}, {"electrical", 0.75}, {"hvac", 0.60}},
		"school":        {{"fire-protection", 0.80}, {"hvac", 0.75}, {"electrical", 0.75}, {"security", 0.60}, {"flooring", 0.55}},
		"hospital":      {{"hvac", 0.85}, {"electrical", 0.85}, {"plumbing", 0.80}, {"fire-protection", 0.85}, {"security", 0.60}},
		"hotel":         {{"hvac", 0.75}, {"plumbing", 0.75}, {"fire-protection", 0.80}, {"elevator", 0.70}, {"flooring", 0.60}},
		"institutional": {{"fire-protection", 0.70}, {"hvac", 0.65}, {"electrical", 0.65}},
		"low-rise":      {{"framing", 0.55}, {"concrete", 0.55}},
		"mid-rise":      {{"concrete", 0.80}, {"structural-steel", 0.65}, {"elevator", 0.75}, {"fire-protection", 0.75}},
		"high-rise":     {{"concrete", 0.90}, {"structural-steel", 0.80}, {"elevator", 0.90}, {"fire-protection", 0.90}, {"glazing", 0.80}, {"shoring", 0.70}},

		// Systems.
		"hvac":        {{"hvac", 0.90}},
		"plumbing":    {{"plumbing", 0.90}},
		"electrical":  {{"electrical", 0.90}},
		"sprinkler":   {{"fire-protection", 0.90}, {"plumbing", 0.50}},
		"fire-alarm":  {{"fire-protection", 0.85}, {"electrical", 0.70}},
		"drain":       {{"drain-plumbing", 0.90}, {"excavation", 0.60}},
		"backflow":    {{"plumbing", 0.85}, {"drain-plumbing", 0.60}},
		"elevator":    {{"elevator", 0.95}, {"electrical", 0.55}},
		"generator":   {{"electrical", 0.85}, {"concrete", 0.40}},
		"ev-charging": {{"electrical", 0.90}, {"paving", 0.40}},
	}
}

// defaultTagProducts maps normalized tag keys to product-group slugs.
func defaultTagProducts() map[string][]string {
	return map[string][]string{
		"foundation":           {"ready-mix", "rebar", "waterproofing-membranes"},
		"underpinning":         {"ready-mix", "rebar", "waterproofing-membranes"},
		"structural":           {"structural-steel", "lumber"},
		"structural-beam":      {"structural-steel", "lumber"},
		"open-concept":         {"structural-steel", "flooring-materials", "drywall-supplies"},
		"addition":             {"lumber", "ready-mix", "roofing-materials", "windows", "insulation-materials", "drywall-supplies"},
		"1-storey-addition":    {"lumber", "ready-mix", "roofing-materials", "windows", "insulation-materials", "drywall-supplies"},
		"2-storey-addition":    {"lumber", "ready-mix", "roofing-materials", "windows", "insulation-materials", "drywall-supplies", "stairs"},
		"3-storey-addition":    {"lumber", "ready-mix", "structural-steel", "roofing-materials", "windows", "insulation-materials", "drywall-supplies", "stairs"},
		"roofing":              {"roofing-materials"},
		"dormer":               {"lumber", "roofing-materials", "windows"},
		"windows":              {"windows"},
		"doors":                {"doors"},
		"storefront":           {"windows", "doors"},
		"garage":               {"garage-doors", "lumber", "ready-mix"},
		"carport":              {"lumber"},
		"deck":                 {"decking-materials", "railings"},
		"porch":                {"decking-materials", "railings", "lumber"},
		"balcony":              {"railings", "waterproofing-membranes"},
		"fence":                {"fencing-materials"},
		"landscaping":          {"landscape-supplies"},
		"retaining-wall":       {"landscape-supplies", "ready-mix"},
		"pool":                 {"pool-equipment", "fencing-materials", "landscape-supplies"},
		"solar":                {"solar-panels"},
		"fireplace":            {"fireplaces"},
		"kitchen":              {"kitchen-cabinets", "countertops", "appliances", "plumbing-fixtures", "tile", "lighting"},
		"bathroom":             {"plumbing-fixtures", "tile", "countertops", "lighting"},
		"laundry":              {"appliances", "plumbing-fixtures"},
		"basement":             {"drywall-supplies", "insulation-materials", "flooring-materials", "waterproofing-membranes"},
		"finished-basement":    {"drywall-supplies", "insulation-materials", "flooring-materials", "lighting"},
		"second-suite":         {"kitchen-cabinets", "appliances", "plumbing-fixtures", "drywall-supplies", "fire-safety", "doors"},
		"laneway-suite":        {"lumber", "ready-mix", "windows", "doors", "kitchen-cabinets", "plumbing-fixtures", "hvac-equipment"},
		"interior-alterations": {"drywall-supplies", "paint", "flooring-materials", "lighting", "doors"},
		"fire-damage":          {"lumber", "drywall-supplies", "paint", "insulation-materials"},
		"flooring":             {"flooring-materials"},
		"stairs":               {"stairs", "railings"},
		"walkout":              {"doors", "ready-mix", "waterproofing-membranes"},
		"sfd":                  {"lumber", "ready-mix", "roofing-materials", "windows", "doors", "insulation-materials", "drywall-supplies", "kitchen-cabinets", "appliances", "plumbing-fixtures", "hvac-equipment", "flooring-materials"},
		"semi-detached":        {"lumber", "ready-mix", "roofing-materials", "windows", "doors", "insulation-materials", "drywall-supplies", "kitchen-cabinets", "plumbing-fixtures", "hvac-equipment"},
		"townhouse":            {"lumber", "ready-mix", "roofing-materials", "windows", "doors", "drywall-supplies", "kitchen-cabinets", "plumbing-fixtures", "hvac-equipment"},
		"stacked-townhouse":    {"ready-mix", "windows", "doors", "drywall-supplies", "kitchen-cabinets", "plumbing-fixtures", "hvac-equipment", "fire-safety"},
		"houseplex":            {"lumber", "ready-mix", "windows", "doors", "drywall-supplies", "kitchen-cabinets", "appliances", "plumbing-fixtures", "hvac-equipment", "fire-safety"},
		"hvac":                 {"hvac-equipment"},
		"plumbing":             {"plumbing-fixtures"},
		"electrical":           {"lighting"},
		"sprinkler":            {"fire-safety"},
		"fire-alarm":           {"fire-safety"},
		"elevator":             {"elevators"},
		"mid-rise":             {"ready-mix", "rebar", "elevators", "fire-safety"},
		"high-rise":            {"ready-mix", "rebar", "structural-steel", "elevators", "fire-safety", "windows"},
	}
}
