package deband

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/algo-deband/graph"
)

// Op names of the plugin nodes F3kdb emits. The reference engine does not
// implement these; rendering requires a registry entry for the plugin.
const (
	OpF3kdb    = "f3kdb.Deband"
	OpNeoF3kdb = "neo_f3kdb.Deband"
)

const (
	maxF3kdbRadius    = 64
	maxF3kdbThreshold = 511
	maxF3kdbGrain     = 512

	defaultF3kdbRadius    = 16
	defaultF3kdbThreshold = 30
)

// SampleMode selects which neighbours flash3kyuu_deband averages when
// deciding whether a pixel sits inside a band.
type SampleMode int

const (
	// SampleColumn averages the pixels radius rows above and below.
	SampleColumn SampleMode = 1 + iota
	// SampleSquare averages the four diagonal pixels at the radius. The
	// plugin default.
	SampleSquare
	// SampleRow averages the pixels radius columns left and right. Needs
	// the neo fork.
	SampleRow
	// SampleColumnRow averages all four axis pixels. Needs the neo fork.
	SampleColumnRow

	sampleModeEnd
)

var sampleModeNames = map[SampleMode]string{
	SampleColumn:    "Column",
	SampleSquare:    "Square",
	SampleRow:       "Row",
	SampleColumnRow: "ColumnRow",
}

// String returns a human-readable sample mode name.
func (m SampleMode) String() string {
	if name, ok := sampleModeNames[m]; ok {
		return name
	}
	return "SampleMode(" + strconv.Itoa(int(m)) + ")"
}

// Valid reports whether the mode is one of the defined constants.
func (m SampleMode) Valid() bool {
	return m >= SampleColumn && m < sampleModeEnd
}

// F3kdbOption mutates F3kdb configuration.
type F3kdbOption func(*f3kdbConfig) error

type f3kdbConfig struct {
	radius       int
	thresholds   []int
	grain        []int
	sampleMode   SampleMode
	neo          bool
	seed         int
	hasSeed      bool
	dynamicGrain bool
	blurFirst    bool
	keepTVRange  bool
}

func defaultF3kdbConfig() f3kdbConfig {
	return f3kdbConfig{
		radius:     defaultF3kdbRadius,
		thresholds: []int{defaultF3kdbThreshold},
		grain:      []int{0},
		sampleMode: SampleSquare,
	}
}

// WithF3kdbRadius sets the banding detection range in pixels.
// Range: [1, 64]. The default is 16.
func WithF3kdbRadius(radius int) F3kdbOption {
	return func(cfg *f3kdbConfig) error {
		if err := checkF3kdbRadius(radius); err != nil {
			return err
		}
		cfg.radius = radius
		return nil
	}
}

// WithF3kdbThresholds sets the banding detection thresholds for the luma
// and chroma planes (up to three values, the last one repeats). Range per
// value: [0, 511]. The default is 30.
func WithF3kdbThresholds(thresholds ...int) F3kdbOption {
	return func(cfg *f3kdbConfig) error {
		if err := checkF3kdbThresholds(thresholds); err != nil {
			return err
		}
		cfg.thresholds = append([]int(nil), thresholds...)
		return nil
	}
}

// WithF3kdbGrain sets the grain strength for luma and chroma (up to two
// values). Range per value: [0, 512]. The default is 0.
func WithF3kdbGrain(grain ...int) F3kdbOption {
	return func(cfg *f3kdbConfig) error {
		if err := checkF3kdbGrain(grain); err != nil {
			return err
		}
		cfg.grain = append([]int(nil), grain...)
		return nil
	}
}

// WithF3kdbSampleMode selects the banding detection neighbourhood.
// SampleRow and SampleColumnRow need the neo fork. The default is
// SampleSquare.
func WithF3kdbSampleMode(mode SampleMode) F3kdbOption {
	return func(cfg *f3kdbConfig) error {
		if !mode.Valid() {
			return fmt.Errorf("deband: invalid sample mode %d: %w", int(mode), graph.ErrBadArgument)
		}
		cfg.sampleMode = mode
		return nil
	}
}

// WithF3kdbNeo switches to the neo_f3kdb fork of the plugin.
func WithF3kdbNeo(neo bool) F3kdbOption {
	return func(cfg *f3kdbConfig) error {
		cfg.neo = neo
		return nil
	}
}

// WithF3kdbSeed fixes the grain random seed for reproducible output.
func WithF3kdbSeed(seed int) F3kdbOption {
	return func(cfg *f3kdbConfig) error {
		cfg.seed = seed
		cfg.hasSeed = true
		return nil
	}
}

// WithF3kdbDynamicGrain varies the grain pattern every frame.
func WithF3kdbDynamicGrain(dynamic bool) F3kdbOption {
	return func(cfg *f3kdbConfig) error {
		cfg.dynamicGrain = dynamic
		return nil
	}
}

// WithF3kdbBlurFirst compares pixels against the neighbourhood mean instead
// of each neighbour individually.
func WithF3kdbBlurFirst(blurFirst bool) F3kdbOption {
	return func(cfg *f3kdbConfig) error {
		cfg.blurFirst = blurFirst
		return nil
	}
}

// WithF3kdbKeepTVRange clamps the output to TV (limited) range.
func WithF3kdbKeepTVRange(keep bool) F3kdbOption {
	return func(cfg *f3kdbConfig) error {
		cfg.keepTVRange = keep
		return nil
	}
}

// F3kdb drives the flash3kyuu_deband plugin. It detects banding by
// comparing each pixel against neighbours at the configured radius and
// replaces banded pixels with an interpolated value, optionally adding
// grain to hide the remaining steps.
type F3kdb struct {
	cfg f3kdbConfig
}

// NewF3kdb returns a debander with the given options applied over the
// plugin defaults (radius 16, thresholds 30, no grain, square sampling).
func NewF3kdb(opts ...F3kdbOption) (*F3kdb, error) {
	cfg := defaultF3kdbConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if !cfg.neo && cfg.sampleMode > SampleSquare {
		return nil, fmt.Errorf("deband: sample mode %v needs the neo fork: %w",
			cfg.sampleMode, graph.ErrBadArgument)
	}
	return &F3kdb{cfg: cfg}, nil
}

// Radius returns the configured banding detection range.
func (f *F3kdb) Radius() int { return f.cfg.radius }

// Neo reports whether the neo fork is targeted.
func (f *F3kdb) Neo() bool { return f.cfg.neo }

// Deband appends one plugin invocation over clip. Zero fields in p fall
// back to the configured defaults; see Params. The clip must be integer
// with 8 to 16 bits per sample, output depth matches the input.
func (f *F3kdb) Deband(clip graph.Clip, p Params) (graph.Clip, error) {
	if err := graph.CheckFixed(clip, "deband: f3kdb"); err != nil {
		return graph.Clip{}, err
	}
	format := clip.Format()
	if format.Sample != graph.SampleInteger || format.Bits > 16 {
		return graph.Clip{}, fmt.Errorf("deband: f3kdb: needs an integer clip with at most 16 bits, got %v: %w",
			format, graph.ErrFormatMismatch)
	}

	radius := f.cfg.radius
	if p.Radius != 0 {
		if err := checkF3kdbRadius(p.Radius); err != nil {
			return graph.Clip{}, err
		}
		radius = p.Radius
	}
	thresholds := f.cfg.thresholds
	if p.Thresholds != nil {
		if err := checkF3kdbThresholds(p.Thresholds); err != nil {
			return graph.Clip{}, err
		}
		thresholds = p.Thresholds
	}
	grain := f.cfg.grain
	if p.Grain != nil {
		if err := checkF3kdbGrain(p.Grain); err != nil {
			return graph.Clip{}, err
		}
		grain = p.Grain
	}

	thr, err := graph.NormalizeSeq(thresholds, 3)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("deband: f3kdb: %w", err)
	}
	gr, err := graph.NormalizeSeq(grain, 2)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("deband: f3kdb: %w", err)
	}

	args := graph.Args{
		"range":        radius,
		"y":            thr[0],
		"cb":           thr[1],
		"cr":           thr[2],
		"grainy":       gr[0],
		"grainc":       gr[1],
		"sample_mode":  int(f.cfg.sampleMode),
		"output_depth": format.Bits,
	}
	if f.cfg.hasSeed {
		args["seed"] = f.cfg.seed
	}
	if f.cfg.dynamicGrain {
		args["dynamic_grain"] = true
	}
	if f.cfg.blurFirst {
		args["blur_first"] = true
	}
	if f.cfg.keepTVRange {
		args["keep_tv_range"] = true
	}

	op := OpF3kdb
	if f.cfg.neo {
		op = OpNeoF3kdb
	}
	return clip.Invoke(op, args)
}

// Grain adds grain without debanding: a plugin pass with zeroed thresholds.
// Empty or all-zero amounts fall back to the configured grain; if that is
// zero too, the clip is returned unchanged.
func (f *F3kdb) Grain(clip graph.Clip, amount ...int) (graph.Clip, error) {
	grain := amount
	if len(grain) == 0 {
		grain = f.cfg.grain
	}
	if err := checkF3kdbGrain(grain); err != nil {
		return graph.Clip{}, err
	}
	if allZeroInts(grain) {
		return clip, nil
	}
	return f.Deband(clip, Params{Thresholds: []int{0}, Grain: grain})
}

// Dumb3kdb is the convenience entry point for a single F3kdb pass.
func Dumb3kdb(clip graph.Clip, opts ...F3kdbOption) (graph.Clip, error) {
	f, err := NewF3kdb(opts...)
	if err != nil {
		return graph.Clip{}, err
	}
	return f.Deband(clip, Params{})
}

func checkF3kdbRadius(radius int) error {
	if radius < 1 || radius > maxF3kdbRadius {
		return fmt.Errorf("deband: f3kdb: radius must be in [1, %d]: %d", maxF3kdbRadius, radius)
	}
	return nil
}

func checkF3kdbThresholds(thresholds []int) error {
	if len(thresholds) == 0 {
		return fmt.Errorf("deband: f3kdb: thresholds need at least one value: %w", graph.ErrBadArgument)
	}
	for _, t := range thresholds {
		if t < 0 || t > maxF3kdbThreshold {
			return fmt.Errorf("deband: f3kdb: threshold must be in [0, %d]: %d", maxF3kdbThreshold, t)
		}
	}
	return nil
}

func checkF3kdbGrain(grain []int) error {
	if len(grain) == 0 {
		return fmt.Errorf("deband: f3kdb: grain needs at least one value: %w", graph.ErrBadArgument)
	}
	for _, g := range grain {
		if g < 0 || g > maxF3kdbGrain {
			return fmt.Errorf("deband: f3kdb: grain must be in [0, %d]: %d", maxF3kdbGrain, g)
		}
	}
	return nil
}

func allZeroInts(vals []int) bool {
	for _, v := range vals {
		if v != 0 {
			return false
		}
	}
	return true
}
