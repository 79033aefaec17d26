package banner

import (
	"flood/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(styles.ColorPrimary).
		Bold(true)

	ascii := `
   _____ __                 __
  / _/ /  ___  ___  ___/ /
 / _/ /__/ _ \/ _ \/ _  /
/_//____/\___/\___/\_,_/`

	return "\n" + style.Render(ascii) + "\n"
}
