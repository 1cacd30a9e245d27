package facets

// DefaultPriority is the declared tie-break and URL segment order for the
// default dictionary. Size first mirrors observed navigation behaviour in
// electronics catalogs.
var DefaultPriority = []Key{
	Size, Technology, Brand, Connectivity, Resolution,
	RefreshRate, Feature, Condition, UseCase, Offer, Price, Sorting,
}

// Default returns the built-in dictionary covering the Spanish and
// Portuguese label variants of the supported exports. Catalogs with other
// facets load their own dictionary through the config package.
func Default() *Dictionary {
	return New(defaultEntries, DefaultPriority)
}

var defaultEntries = []Entry{
	{
		Key:    Size,
		Labels: []string{"pulgadas", "tamaño", "tamano", "tamanho em polegadas", "polegadas", "size"},
		Values: []string{"32", "40", "43", "50", "55", "65", "75", "85"},
	},
	{
		Key:    Brand,
		Labels: []string{"marcas", "marca", "brand", "brands"},
		Values: []string{
			"samsung", "lg", "sony", "philips", "tcl", "hisense",
			"xiaomi", "nilait", "tesla", "panasonic", "sharp", "toshiba",
		},
		URLTokens: []string{
			"samsung", "lg", "sony", "philips", "tcl", "hisense",
			"xiaomi", "nilait", "tesla", "panasonic", "sharp", "toshiba",
		},
	},
	{
		Key:       Technology,
		Labels:    []string{"tecnologia", "tecnología", "panel", "technology"},
		Values:    []string{"oled", "qled", "qned", "mini-led", "nanocell", "neo-qled", "ambilight", "led"},
		URLTokens: []string{"oled", "qled", "qned", "mini-led", "miniled", "nanocell", "neo-qled", "ambilight"},
	},
	{
		Key:       Connectivity,
		Labels:    []string{"conectividad", "conectividade", "connectivity"},
		Values:    []string{"smart tv", "android tv", "google tv", "wifi", "bluetooth"},
		URLTokens: []string{"smart-tv", "android-tv", "google-tv"},
	},
	{
		Key:    Resolution,
		Labels: []string{"resolucion", "resolución", "resolution"},
		Values: []string{"4k", "8k", "full hd", "uhd"},
		URLTokens: []string{"4k", "8k"},
	},
	{
		Key:    RefreshRate,
		Labels: []string{"frecuencia", "hz", "refresh rate"},
		Values: []string{"120hz", "144hz", "60hz"},
	},
	{
		Key:       Feature,
		Labels:    []string{"hdr", "hdmi", "feature"},
		Values:    []string{"hdr", "hdmi 2.1", "dolby vision"},
		URLTokens: []string{"120-hz", "120hz", "hdmi-2-1"},
	},
	{
		Key:       Condition,
		Labels:    []string{"reacondicionado", "estado", "condition"},
		Values:    []string{"reacondicionado", "segunda mano"},
		URLTokens: []string{"reacondicionado"},
	},
	{
		Key:       UseCase,
		Labels:    []string{"uso", "use", "use case"},
		Values:    []string{"gaming"},
		URLTokens: []string{"gaming"},
	},
	{
		Key:       Offer,
		Labels:    []string{"oferta", "ofertas", "offer"},
		URLTokens: []string{"ofertas"},
	},
	{
		Key:    Price,
		Labels: []string{"precio", "preço", "price"},
	},
	{
		Key:    Sorting,
		Labels: []string{"order", "ordenar", "orden", "sort"},
	},
}
