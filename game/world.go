package game

// Static data for the classic world map: 42 territories in 6 continents.
// Adjacency is declared one-way here; AddBorder makes it symmetric.

type continentDef struct {
	id    string
	name  string
	bonus int
}

type territoryDef struct {
	id        string
	name      string
	continent string
	x, y      int
}

var continentDefs = []continentDef{
	{"north-america", "North America", 5},
	{"south-america", "South America", 2},
	{"europe", "Europe", 5},
	{"africa", "Africa", 3},
	{"asia", "Asia", 7},
	{"oceania", "Oceania", 2},
}

var territoryDefs = []territoryDef{
	{"alaska", "Alaska", "north-america", 40, 70},
	{"northwest-territory", "Northwest Territory", "north-america", 110, 70},
	{"greenland", "Greenland", "north-america", 290, 45},
	{"alberta", "Alberta", "north-america", 110, 120},
	{"ontario", "Ontario", "north-america", 170, 130},
	{"quebec", "Quebec", "north-america", 235, 130},
	{"western-us", "Western United States", "north-america", 115, 185},
	{"eastern-us", "Eastern United States", "north-america", 185, 200},
	{"central-america", "Central America", "north-america", 130, 260},
	{"venezuela", "Venezuela", "south-america", 190, 320},
	{"brazil", "Brazil", "south-america", 250, 370},
	{"peru", "Peru", "south-america", 195, 390},
	{"argentina", "Argentina", "south-america", 210, 460},
	{"iceland", "Iceland", "europe", 370, 90},
	{"scandinavia", "Scandinavia", "europe", 450, 80},
	{"great-britain", "Great Britain", "europe", 380, 150},
	{"northern-europe", "Northern Europe", "europe", 450, 160},
	{"western-europe", "Western Europe", "europe", 390, 220},
	{"southern-europe", "Southern Europe", "europe", 460, 215},
	{"ukraine", "Ukraine", "europe", 530, 130},
	{"north-africa", "North Africa", "africa", 420, 310},
	{"egypt", "Egypt", "africa", 480, 290},
	{"east-africa", "East Africa", "africa", 520, 350},
	{"congo", "Congo", "africa", 470, 390},
	{"south-africa", "South Africa", "africa", 480, 460},
	{"madagascar", "Madagascar", "africa", 550, 460},
	{"ural", "Ural", "asia", 610, 110},
	{"siberia", "Siberia", "asia", 660, 80},
	{"yakutsk", "Yakutsk", "asia", 730, 60},
	{"kamchatka", "Kamchatka", "asia", 800, 70},
	{"irkutsk", "Irkutsk", "asia", 710, 120},
	{"mongolia", "Mongolia", "asia", 720, 170},
	{"japan", "Japan", "asia", 810, 180},
	{"afghanistan", "Afghanistan", "asia", 600, 190},
	{"china", "China", "asia", 690, 220},
	{"middle-east", "Middle East", "asia", 545, 260},
	{"india", "India", "asia", 630, 280},
	{"siam", "Siam", "asia", 700, 290},
	{"indonesia", "Indonesia", "oceania", 720, 370},
	{"new-guinea", "New Guinea", "oceania", 800, 360},
	{"western-australia", "Western Australia", "oceania", 750, 450},
	{"eastern-australia", "Eastern Australia", "oceania", 810, 440},
}

var worldAdjacency = map[string][]string{
	"alaska":              {"northwest-territory", "alberta", "kamchatka"},
	"northwest-territory": {"alberta", "ontario", "greenland"},
	"greenland":           {"ontario", "quebec", "iceland"},
	"alberta":             {"ontario", "western-us"},
	"ontario":             {"quebec", "western-us", "eastern-us"},
	"quebec":              {"eastern-us"},
	"western-us":          {"eastern-us", "central-america"},
	"eastern-us":          {"central-america"},
	"central-america":     {"venezuela"},
	"venezuela":           {"brazil", "peru"},
	"brazil":              {"peru", "argentina", "north-africa"},
	"peru":                {"argentina"},
	"iceland":             {"great-britain", "scandinavia"},
	"scandinavia":         {"great-britain", "northern-europe", "ukraine"},
	"great-britain":       {"northern-europe", "western-europe"},
	"northern-europe":     {"ukraine", "southern-europe", "western-europe"},
	"western-europe":      {"southern-europe", "north-africa"},
	"southern-europe":     {"ukraine", "middle-east", "egypt", "north-africa"},
	"ukraine":             {"ural", "afghanistan", "middle-east"},
	"north-africa":        {"egypt", "east-africa", "congo"},
	"egypt":               {"east-africa", "middle-east"},
	"east-africa":         {"congo", "south-africa", "madagascar", "middle-east"},
	"congo":               {"south-africa"},
	"south-africa":        {"madagascar"},
	"ural":                {"siberia", "afghanistan", "china"},
	"siberia":             {"yakutsk", "irkutsk", "mongolia", "china"},
	"yakutsk":             {"kamchatka", "irkutsk"},
	"kamchatka":           {"irkutsk", "mongolia", "japan"},
	"irkutsk":             {"mongolia"},
	"mongolia":            {"japan", "china"},
	"afghanistan":         {"china", "india", "middle-east"},
	"china":               {"india", "siam"},
	"middle-east":         {"india"},
	"india":               {"siam"},
	"siam":                {"indonesia"},
	"indonesia":           {"new-guinea", "western-australia"},
	"new-guinea":          {"western-australia", "eastern-australia"},
	"western-australia":   {"eastern-australia"},
}

// ClassicWorld builds a fresh copy of the classic world map with all
// territories unowned.
func ClassicWorld() *WorldMap {
	w := NewWorldMap()
	for _, c := range continentDefs {
		w.AddContinent(&Continent{ID: c.id, Name: c.name, Bonus: c.bonus})
	}
	for _, t := range territoryDefs {
		w.AddTerritory(&Territory{
			ID:          t.id,
			Name:        t.name,
			ContinentID: t.continent,
			X:           t.x,
			Y:           t.y,
		})
	}
	for id, neighbors := range worldAdjacency {
		for _, n := range neighbors {
			w.AddBorder(id, n)
		}
	}
	return w
}
