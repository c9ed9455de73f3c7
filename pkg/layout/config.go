package layout

// Default layout constants. These control diagram density, not correctness:
// any positive values produce a valid non-overlapping layered layout.
const (
	// DefaultLevelHeight is the vertical distance between consecutive
	// occupied levels.
	DefaultLevelHeight = 300.0

	// DefaultNodeSpacing is the horizontal distance between successive
	// nodes within a group.
	DefaultNodeSpacing = 250.0

	// DefaultGroupSpacing is the minimum horizontal advance between groups,
	// guaranteeing a gap even for single-node groups.
	DefaultGroupSpacing = 400.0

	// DefaultMargin is the top and left offset of the first row and column.
	DefaultMargin = 50.0

	// DefaultEntryImportance is the importance assigned to entry nodes.
	DefaultEntryImportance = 10.0

	// DefaultImportanceDecay is subtracted per BFS hop from the frontier.
	DefaultImportanceDecay = 2.0

	// DefaultFallbackLevel is the sentinel level for nodes unreachable from
	// any entry point. It sits numerically above most reachable levels so
	// disconnected nodes settle below the connected hierarchy.
	DefaultFallbackLevel = 5

	// DefaultFallbackImportance is the importance for unreachable nodes.
	DefaultFallbackImportance = 1.0
)

// Config holds the tunable layout constants.
// The zero value of any field is replaced by its documented default, so
// Config{} behaves like DefaultConfig(). The trade-off is that an explicit
// zero cannot be expressed: Margin 0, FallbackLevel 0, and
// FallbackImportance 0 each resolve to their default, not to zero.
// FallbackLevel can also collide with a legitimately deep hierarchy (a 6-hop
// entry chain sits below disconnected nodes); callers who care can set it to
// their maximum expected depth plus one.
type Config struct {
	LevelHeight        float64 // vertical step per occupied level
	NodeSpacing        float64 // horizontal step per node within a group
	GroupSpacing       float64 // minimum horizontal advance per group
	Margin             float64 // top/left offset
	EntryImportance    float64 // importance of entry nodes
	ImportanceDecay    float64 // importance lost per hop
	FallbackLevel      int     // level for unreachable nodes
	FallbackImportance float64 // importance for unreachable nodes
}

// DefaultConfig returns the documented default layout constants.
func DefaultConfig() Config {
	return Config{
		LevelHeight:        DefaultLevelHeight,
		NodeSpacing:        DefaultNodeSpacing,
		GroupSpacing:       DefaultGroupSpacing,
		Margin:             DefaultMargin,
		EntryImportance:    DefaultEntryImportance,
		ImportanceDecay:    DefaultImportanceDecay,
		FallbackLevel:      DefaultFallbackLevel,
		FallbackImportance: DefaultFallbackImportance,
	}
}

// withDefaults returns a copy of c with zero-valued fields replaced by
// defaults. Zero means "unset" for every field, Margin, FallbackLevel, and
// FallbackImportance included; see the Config doc for the trade-off.
func (c Config) withDefaults() Config {
	if c.LevelHeight == 0 {
		c.LevelHeight = DefaultLevelHeight
	}
	if c.NodeSpacing == 0 {
		c.NodeSpacing = DefaultNodeSpacing
	}
	if c.GroupSpacing == 0 {
		c.GroupSpacing = DefaultGroupSpacing
	}
	if c.Margin == 0 {
		c.Margin = DefaultMargin
	}
	if c.EntryImportance == 0 {
		c.EntryImportance = DefaultEntryImportance
	}
	if c.ImportanceDecay == 0 {
		c.ImportanceDecay = DefaultImportanceDecay
	}
	if c.FallbackLevel == 0 {
		c.FallbackLevel = DefaultFallbackLevel
	}
	if c.FallbackImportance == 0 {
		c.FallbackImportance = DefaultFallbackImportance
	}
	return c
}
