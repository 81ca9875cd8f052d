package goal

// Option describes a goal as presented in a picker.
type Option struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
	Badge    string `json:"badge,omitempty" yaml:"badge,omitempty"`
}

var subtitles = map[Goal]string{
	PerformanceBoost:  "Optimize speed & memory",
	SecurityHardening: "Fix vulnerabilities",
	Accessibility:     "Add WCAG compliance",
	MobileFirst:       "Responsive design",
	ModernStack:       "Update to latest",
	BestPractices:     "Clean code patterns",
}

// Catalog returns the picker options in catalog order.
func Catalog() []Option {
	out := make([]Option, 0, len(All))
	for _, g := range All {
		opt := Option{ID: g.ID(), Name: g.ID(), Subtitle: subtitles[g]}
		if g == PerformanceBoost {
			opt.Badge = "Most Popular"
		}
		out = append(out, opt)
	}
	return out
}
