package theme

// Centralized theming and styling initialization for the rustlens UI.
// Provides palette constants and InitStyles to activate a base theme and
// configure semantic widget styles.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Palette defines core semantic colors used across widgets.
const (
	ColorBg        = "#f7f9fb" // app background
	ColorSurface   = "#ffffff" // panels, cards
	ColorBorder    = "#d0d7de"
	ColorPrimary   = "#007bff" // choose / detect
	ColorSecondary = "#6c757d" // raw JSON toggle
	ColorSuccess   = "#28a745" // save overlay
	ColorDanger    = "#dc3545" // reset, error line
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
)

// PaletteSnapshot holds the resolved colors.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Secondary string
	Success   string
	Danger    string
	Text      string
	TextMuted string
}

// CurrentPalette returns the resolved palette.
func CurrentPalette() PaletteSnapshot {
	return PaletteSnapshot{
		AppBg:     ColorBg,
		Surface:   ColorSurface,
		Border:    ColorBorder,
		Primary:   ColorPrimary,
		Secondary: ColorSecondary,
		Success:   ColorSuccess,
		Danger:    ColorDanger,
		Text:      ColorText,
		TextMuted: ColorTextMuted,
	}
}

// style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton   = "primary.TButton"
	StyleSecondaryButton = "secondary.TButton"
	StyleSuccessButton   = "success.TButton"
	StyleDangerButton    = "danger.TButton"
)

// InitStyles activates the base theme and configures the button styles.
func InitStyles() { applyStyles(CurrentPalette()) }

func applyStyles(p PaletteSnapshot) {
	_ = ActivateTheme("azure light") // baseline metrics
	App.Configure(Background(p.AppBg))

	button := func(name, bg string) {
		StyleConfigure(name,
			Background(bg),
			Foreground("white"),
			Padding("4p 3p"),
			Borderwidth(1),
			Relief("ridge"),
		)
	}
	button(StylePrimaryButton, p.Primary)
	button(StyleSecondaryButton, p.Secondary)
	button(StyleSuccessButton, p.Success)
	button(StyleDangerButton, p.Danger)
}
