package settings

// Themes is the fixed set of UI themes a settings snapshot may carry.
var Themes = []string{
	"light",
	"dark",
	"cupcake",
	"corporate",
	"retro",
	"cyberpunk",
	"valentine",
	"garden",
	"forest",
	"aqua",
	"pastel",
	"fantasy",
	"dracula",
	"autumn",
	"business",
	"winter",
}

const DefaultTheme = "winter"

func ValidTheme(t string) bool {
	for _, v := range Themes {
		if v == t {
			return true
		}
	}
	return false
}
