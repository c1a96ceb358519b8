package models

// LoginProvider describes one login button on the auth page.
// An empty LoginPath renders an inert button.
type LoginProvider struct {
	Name      string
	Label     string
	LoginPath string
	IconURL   string
	IconAlt   string
	IconSize  int
	Variant   string
}

// AuthPageData represents the data passed to the auth template for rendering.
type AuthPageData struct {
	// Title is the card heading and the browser tab title
	Title string

	// Description is the text under the heading
	Description string

	// Providers are rendered as buttons in order
	Providers []LoginProvider

	// Disclaimer is the consent notice under the buttons
	Disclaimer string
}
