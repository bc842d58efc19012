package config

// City represents a supported city and its listing data file
type City struct {
	Name        string    `json:"name"`
	ListingFile string    `json:"listing_file"`
	Center      []float64 `json:"center"`
	ZoomLevel   int       `json:"zoom_level"`
}

// SupportedCities lists the cities the price model was trained on
var SupportedCities = []City{
	{
		Name:        "Geneva",
		ListingFile: "geneve.csv",
		Center:      []float64{46.2044, 6.1432},
		ZoomLevel:   13,
	},
	{
		Name:        "Lausanne",
		ListingFile: "lausanne.csv",
		Center:      []float64{46.5197, 6.6323},
		ZoomLevel:   13,
	},
	{
		Name:        "Zurich",
		ListingFile: "zurich.csv",
		Center:      []float64{47.3769, 8.5417},
		ZoomLevel:   13,
	},
	{
		Name:        "St. Gallen",
		ListingFile: "st.gallen.csv",
		Center:      []float64{47.4245, 9.3767},
		ZoomLevel:   13,
	},
}

// GetCityNames returns a list of supported city names
func GetCityNames() []string {
	names := make([]string, len(SupportedCities))
	for i, city := range SupportedCities {
		names[i] = city.Name
	}
	return names
}

// GetCityByName returns a city configuration by name
func GetCityByName(name string) *City {
	for _, city := range SupportedCities {
		if city.Name == name {
			return &city
		}
	}
	return nil
}

// ListingFiles returns the listing file names for all supported cities
func ListingFiles() []string {
	files := make([]string, len(SupportedCities))
	for i, city := range SupportedCities {
		files[i] = city.ListingFile
	}
	return files
}
