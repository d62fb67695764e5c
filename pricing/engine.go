package pricing

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ekta-storefront/models"
	"ekta-storefront/utils"
)

// ShippingConfig represents the shipping configuration structure
type ShippingConfig struct {
	Currency              string `yaml:"currency"`
	FreeShippingThreshold int64  `yaml:"freeShippingThreshold"`
	FlatRate              int64  `yaml:"flatRate"`
}

// DefaultConfig is used when no shipping config file is provided
var DefaultConfig = ShippingConfig{
	Currency:              "BDT",
	FreeShippingThreshold: 5000,
	FlatRate:              100,
}

// Engine computes checkout quotes from cart lines
type Engine struct {
	config ShippingConfig
}

// NewEngine creates a pricing engine with the given config
func NewEngine(config ShippingConfig) (*Engine, error) {
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid shipping config: %w", err)
	}
	return &Engine{config: config}, nil
}

// LoadEngine creates a pricing engine from a YAML file; an empty path uses DefaultConfig
func LoadEngine(configPath string) (*Engine, error) {
	if configPath == "" {
		return NewEngine(DefaultConfig)
	}

	if !filepath.IsAbs(configPath) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		configPath = filepath.Join(wd, configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read shipping config: %w", err)
	}

	config := DefaultConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse shipping config: %w", err)
	}

	engine, err := NewEngine(config)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ PricingEngine: Successfully loaded shipping config from %s", configPath)
	return engine, nil
}

func validateConfig(config *ShippingConfig) error {
	if config.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if config.FreeShippingThreshold < 0 {
		return fmt.Errorf("freeShippingThreshold must not be negative")
	}
	if config.FlatRate < 0 {
		return fmt.Errorf("flatRate must not be negative")
	}
	return nil
}

// ShippingFor returns the shipping fee for a subtotal
func (e *Engine) ShippingFor(subtotal int64) int64 {
	if subtotal >= e.config.FreeShippingThreshold {
		return 0
	}
	return e.config.FlatRate
}

// Quote computes the order summary for the given cart lines
func (e *Engine) Quote(lines []models.CartLine) models.CheckoutQuote {
	var quote models.CheckoutQuote
	for _, line := range lines {
		quote.ItemCount += line.Quantity
		quote.Subtotal += int64(line.Quantity) * line.Product.Price
	}
	if quote.ItemCount > 0 {
		quote.Shipping = e.ShippingFor(quote.Subtotal)
	}
	quote.FreeShipping = quote.ItemCount > 0 && quote.Shipping == 0
	quote.Total = quote.Subtotal + quote.Shipping
	quote.Display = utils.FormatTaka(quote.Total)
	return quote
}
