package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Server configuration
	Server struct {
		// Port the HTTP API listens on
		Port string `env:"SERVER_PORT" envDefault:"5250"`

		// Allowed CORS origins, comma separated
		CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	}

	// Data locations
	Data struct {
		// Directory containing the per-city listing files
		ListingDir string `env:"LISTING_DATA_DIR" envDefault:"data"`

		// Path to the trained price model artifact
		ModelPath string `env:"MODEL_PATH" envDefault:"data/price_estimator.json"`

		// Path to the sqlite database for estimate history
		DatabasePath string `env:"DATABASE_PATH" envDefault:"database/rentfair.db"`

		// Aggregate the market table by city name instead of postal code
		GroupByCity bool `env:"MARKET_GROUP_BY_CITY" envDefault:"false"`

		// Hours between market table rebuilds, 0 disables
		RefreshIntervalHours int `env:"MARKET_REFRESH_HOURS" envDefault:"24"`
	}

	// Geocoding configuration
	Geocoding struct {
		// Nominatim endpoint
		BaseURL string `env:"NOMINATIM_URL" envDefault:"https://nominatim.openstreetmap.org/search"`

		// Request timeout in seconds
		TimeoutSeconds int `env:"GEOCODE_TIMEOUT" envDefault:"10"`

		// Minimum spacing between requests in milliseconds, per the
		// Nominatim usage policy
		MinIntervalMillis int `env:"GEOCODE_MIN_INTERVAL" envDefault:"1000"`
	}

	// Amenity lookup configuration
	Amenity struct {
		// Overpass endpoint
		BaseURL string `env:"OVERPASS_URL" envDefault:"https://overpass-api.de/api/interpreter"`

		// Request timeout in seconds
		TimeoutSeconds int `env:"AMENITY_TIMEOUT" envDefault:"30"`

		// Number of concurrent category fetches
		FetchWorkers int `env:"AMENITY_FETCH_WORKERS" envDefault:"3"`

		// Results kept per category
		PerCategoryLimit int `env:"AMENITY_PER_CATEGORY" envDefault:"3"`

		// Results kept across all categories combined
		TotalLimit int `env:"AMENITY_TOTAL_LIMIT" envDefault:"9"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
