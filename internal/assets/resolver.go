package assets

// AssetResolver layers a custom theme directory over the built-in theme.
// An asset missing from the custom directory comes from the built-in
// theme; any other custom-theme error is returned as is.
type AssetResolver struct {
	layers    []AssetLoader
	customDir string
}

// NewAssetResolver returns a resolver over the built-in theme, with dir
// layered on top when it is not empty.
func NewAssetResolver(dir string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if dir != "" {
		custom, err := NewFilesystemLoader(dir)
		if err != nil {
			return nil, err
		}
		r.layers = append(r.layers, custom)
		r.customDir = custom.Dir()
	}
	r.layers = append(r.layers, NewEmbeddedLoader())
	return r, nil
}

// CustomDir returns the resolved custom theme directory, or "".
func (r *AssetResolver) CustomDir() string { return r.customDir }

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadTemplate(name) })
}

func (r *AssetResolver) LoadScript(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadScript(name) })
}

func (r *AssetResolver) first(load func(AssetLoader) (string, error)) (content string, err error) {
	for _, l := range r.layers {
		content, err = load(l)
		if err == nil || !IsNotFound(err) {
			return content, err
		}
	}
	return "", err
}

var _ AssetLoader = (*AssetResolver)(nil)
