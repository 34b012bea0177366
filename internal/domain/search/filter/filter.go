package filter

import "fmt"

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// Expression is a conjunction of equality conditions with optional exclusions.
type Expression struct {
	must    []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, mustNot: mustNot}, nil
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.mustNot) == 0
}

// Condition is a single equality clause on a stored field.
// Value is either a string or a bool.
type Condition struct {
	key   string
	value any
}

// NewMatch creates an exact string match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, value: match}, nil
}

// NewFlag creates a boolean equality condition.
func NewFlag(key string, v bool) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, value: v}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Value returns the compared value (string or bool).
func (c Condition) Value() any { return c.value }

// Builder accumulates conditions. The first invalid condition is kept as the build error.
type Builder struct {
	must    []Condition
	mustNot []Condition
	err     error
}

// Match adds a string equality to the must group. Empty values are skipped.
func (b *Builder) Match(key, value string) *Builder {
	if value == "" {
		return b
	}
	c, err := NewMatch(key, value)
	return b.add(&b.must, c, err)
}

// Flag adds a boolean equality to the must group.
func (b *Builder) Flag(key string, v bool) *Builder {
	c, err := NewFlag(key, v)
	return b.add(&b.must, c, err)
}

// Exclude adds a string inequality. Empty values are skipped.
func (b *Builder) Exclude(key, value string) *Builder {
	if value == "" {
		return b
	}
	c, err := NewMatch(key, value)
	return b.add(&b.mustNot, c, err)
}

func (b *Builder) add(group *[]Condition, c Condition, err error) *Builder {
	if b.err != nil {
		return b
	}
	if err != nil {
		b.err = err
		return b
	}
	*group = append(*group, c)
	return b
}

// Build validates the accumulated conditions.
func (b *Builder) Build() (Expression, error) {
	if b.err != nil {
		return Expression{}, b.err
	}
	return NewExpression(b.must, b.mustNot)
}
