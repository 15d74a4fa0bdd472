package match

// DefaultAbbreviations expands the shorthand tokens that appear on
// AutoMercado receipt lines into their catalog spellings. The table is a
// closed, per-market dictionary: extend it per market instead of touching
// the scoring algorithm.
var DefaultAbbreviations = map[string]string{
	"sust":     "sustentable",
	"bey":      "beyond",
	"sazuc":    "sazón",
	"c.cola":   "coca cola",
	"c cola":   "coca cola",
	"tof":      "tofu",
	"susi":     "sushi",
	"bev":      "beverage",
	"lav":      "lavador",
	"cre":      "cremoso",
	"lim":      "limón",
	"axio":     "axion",
	"beyo":     "bimbo",
	"ener":     "energizante",
	"monstrum": "monster",
	"elect":    "eléctrico",
	"hid":      "hidratante",
	"ama":      "amarillo",
	"manteq":   "mantequilla",
	"dp":       "dos pinos",
	"gas":      "gaseosa",
	"nat":      "natural",
	"cristal":  "cristal",
}
