package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/engine"
)

// Scenario is a scripted run of engine operations against a fresh store,
// with checks on each step's outcome and on the final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Today is the wall-clock date the run starts on (YYYY-MM-DD).
	Today string `yaml:"today"`

	// Replenish is the fixed amount every replenishment adds to each
	// product. Zero means engine.ReplenishMin.
	Replenish int `yaml:"replenish,omitempty"`

	// Products are created before the first step.
	Products []ProductSeed `yaml:"products"`

	// Steps run in order. A step without expect must succeed.
	Steps []Step `yaml:"steps"`

	// Assertions check the state after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// ProductSeed is one initial product.
type ProductSeed struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Stock int    `yaml:"stock"`
}

// Step is one engine operation.
type Step struct {
	Op     string   `yaml:"op"`
	Args   StepArgs `yaml:"args,omitempty"`
	Expect *Expect  `yaml:"expect,omitempty"`
}

// StepArgs holds the arguments of every op; each op reads the fields it
// needs.
type StepArgs struct {
	ID       string `yaml:"id,omitempty" json:"id,omitempty"`
	Order    string `yaml:"order,omitempty" json:"order,omitempty"`
	Customer string `yaml:"customer,omitempty" json:"customer,omitempty"`
	Date     string `yaml:"date,omitempty" json:"date,omitempty"`
	Product  string `yaml:"product,omitempty" json:"product,omitempty"`
	Quantity int    `yaml:"quantity,omitempty" json:"quantity,omitempty"`
	Position string `yaml:"position,omitempty" json:"position,omitempty"`
	From     string `yaml:"from,omitempty" json:"from,omitempty"`
	To       string `yaml:"to,omitempty" json:"to,omitempty"`
	Days     int    `yaml:"days,omitempty" json:"days,omitempty"`
}

// Expect describes a step that must fail.
type Expect struct {
	// Error is the expected error kind, e.g. INSUFFICIENT_STOCK.
	Error string `yaml:"error"`

	// Available, when set, must equal the error's available quantity.
	Available *int `yaml:"available,omitempty"`
}

// Step operations.
const (
	OpCreateOrder    = "create_order"
	OpUpdateOrder    = "update_order"
	OpDeleteOrder    = "delete_order"
	OpAddPosition    = "add_position"
	OpUpdatePosition = "update_position"
	OpDeletePosition = "delete_position"
	OpMovePosition   = "move_position"
	OpReplenish      = "replenish"
	OpExpire         = "expire"
	OpAdvance        = "advance"
	OpStartup        = "startup"
	OpPassDays       = "pass_days"
)

// Assertion checks one fact about the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	Product   string   `yaml:"product,omitempty"`
	Order     string   `yaml:"order,omitempty"`
	Position  string   `yaml:"position,omitempty"`
	Equals    *int     `yaml:"equals,omitempty"`
	Quantity  *int     `yaml:"quantity,omitempty"`
	Positions []string `yaml:"positions,omitempty"`
	Count     *int     `yaml:"count,omitempty"`
}

// Assertion types.
const (
	AssertStock          = "stock"           // product's stock equals
	AssertOrderPositions = "order_positions" // order lists exactly positions
	AssertOrderAbsent    = "order_absent"
	AssertPosition       = "position" // position exists, optionally with quantity and order
	AssertPositionAbsent = "position_absent"
	AssertExpired        = "expired"      // total orders expired across steps equals count
	AssertConservation   = "conservation" // stock + allocations == seeded + replenished, per product
	AssertMembership     = "membership"   // order and position links agree, no negative stock
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if _, err := domain.ParseDay(s.Today); err != nil {
		return fmt.Errorf("today: %w", err)
	}
	if s.Replenish != 0 && (s.Replenish < engine.ReplenishMin || s.Replenish >= engine.ReplenishMin+engine.ReplenishSpan) {
		return fmt.Errorf("replenish must be in [%d, %d), got %d",
			engine.ReplenishMin, engine.ReplenishMin+engine.ReplenishSpan, s.Replenish)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, p := range s.Products {
		if p.ID == "" {
			return fmt.Errorf("products[%d]: id is required", i)
		}
	}
	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	switch step.Op {
	case OpCreateOrder, OpUpdateOrder, OpDeleteOrder,
		OpAddPosition, OpUpdatePosition, OpDeletePosition, OpMovePosition,
		OpReplenish, OpStartup:
	case OpExpire, OpAdvance:
		if step.Args.Date == "" {
			return fmt.Errorf("%s: date is required", step.Op)
		}
	case OpPassDays:
		if step.Args.Days <= 0 {
			return fmt.Errorf("%s: days must be positive", step.Op)
		}
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	if step.Expect != nil && step.Expect.Error == "" {
		return fmt.Errorf("expect: error is required")
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertStock:
		if a.Product == "" || a.Equals == nil {
			return fmt.Errorf("stock: product and equals are required")
		}
	case AssertOrderPositions:
		if a.Order == "" {
			return fmt.Errorf("order_positions: order is required")
		}
	case AssertOrderAbsent:
		if a.Order == "" {
			return fmt.Errorf("order_absent: order is required")
		}
	case AssertPosition, AssertPositionAbsent:
		if a.Position == "" {
			return fmt.Errorf("%s: position is required", a.Type)
		}
	case AssertExpired:
		if a.Count == nil {
			return fmt.Errorf("expired: count is required")
		}
	case AssertConservation, AssertMembership:
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
