package assets

// Built-in style and script names.
const (
	SiteStyle   = "site"
	PrintStyle  = "print"
	PrefsScript = "prefs"
	DocScript   = "doc"
)
