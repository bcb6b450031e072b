package filter

// Rule is a single include or exclude rule.
type Rule struct {
	Pattern *compiledPattern
	Include bool
}

// Chain holds an ordered list of rules. The first rule matching a path decides
// whether the path takes part in mirroring; paths no rule matches are included.
type Chain struct {
	rules []Rule
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude adds an exclude rule for the given pattern.
func (c *Chain) AddExclude(pattern string) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp})
	return nil
}

// AddInclude adds an include rule for the given pattern.
func (c *Chain) AddInclude(pattern string) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp, Include: true})
	return nil
}

// Empty reports whether the chain has no rules.
func (c *Chain) Empty() bool {
	return c == nil || len(c.rules) == 0
}

// Match reports whether relPath should be mirrored. relPath is slash or
// OS separated and relative to the sync root.
func (c *Chain) Match(relPath string, isDir bool) bool {
	if c.Empty() {
		return true
	}
	for _, rule := range c.rules {
		if rule.Pattern.match(relPath, isDir) {
			return rule.Include
		}
	}
	return true
}

// Patterns returns the original patterns in rule order, prefixed with
// "+ " or "- " the same way a filter file spells them.
func (c *Chain) Patterns() []string {
	if c.Empty() {
		return nil
	}
	out := make([]string, 0, len(c.rules))
	for _, rule := range c.rules {
		prefix := "- "
		if rule.Include {
			prefix = "+ "
		}
		out = append(out, prefix+rule.Pattern.original)
	}
	return out
}
