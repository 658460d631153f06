package seed

import (
	"embed"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.yaml
var fixturesFS embed.FS

type UserFixture struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	IsAdmin  bool   `yaml:"isAdmin"`
}

type ProductFixture struct {
	Name           string  `yaml:"name"`
	Image          string  `yaml:"image"`
	Description    string  `yaml:"description"`
	Instructor     string  `yaml:"instructor"`
	Category       string  `yaml:"category"`
	Price          string  `yaml:"price"`
	SlotsAvailable int     `yaml:"slotsAvailable"`
	Rating         float64 `yaml:"rating"`
	NumReviews     int     `yaml:"numReviews"`
}

type Fixtures struct {
	Users    []UserFixture
	Products []ProductFixture
}

var errNoUsers = errors.New("seed: fixtures contain no users")

// LoadFixtures reads the embedded user and product fixtures.
func LoadFixtures() (*Fixtures, error) {
	var f Fixtures
	if err := readYAML("fixtures/users.yaml", &f.Users); err != nil {
		return nil, err
	}
	if err := readYAML("fixtures/products.yaml", &f.Products); err != nil {
		return nil, err
	}

	if len(f.Users) == 0 {
		return nil, errNoUsers
	}
	for _, p := range f.Products {
		if _, err := p.price(); err != nil {
			return nil, err
		}
	}

	return &f, nil
}

func readYAML(name string, out any) error {
	data, err := fixturesFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("seed: failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("seed: failed to parse %s: %w", name, err)
	}
	return nil
}

func (p ProductFixture) price() (decimal.Decimal, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("seed: product %q has invalid price %q: %w", p.Name, p.Price, err)
	}
	return price, nil
}
