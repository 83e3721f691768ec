package tenant

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jkindrix/shopquote/internal/domain"
	"github.com/jkindrix/shopquote/internal/errors"
)

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateID reports whether id is a safe tenant directory name.
func ValidateID(id string) error {
	if id == "" || !tenantIDPattern.MatchString(id) {
		return errors.TenantNotFound(id)
	}
	return nil
}

// Store loads tenant data files from a directory tree and caches parsed
// results keyed by file modification time, so edits on disk are picked up
// without a restart and unchanged files are never re-parsed.
type Store struct {
	dir    string
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[cacheKey]*cacheEntry
}

type cacheKey struct {
	tenant string
	file   string
}

type cacheEntry struct {
	mtime time.Time
	value any
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string, logger *zap.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logger,
		cache:  make(map[cacheKey]*cacheEntry),
	}
}

// Data loads the full bundle for one tenant. The pricing table is required;
// config and FAQ fall back to empty defaults when their files are absent.
func (s *Store) Data(tenantID string) (*Data, error) {
	if err := ValidateID(tenantID); err != nil {
		return nil, err
	}
	if fi, err := os.Stat(filepath.Join(s.dir, tenantID)); err != nil || !fi.IsDir() {
		return nil, errors.TenantNotFound(tenantID)
	}

	pricingVal, err := s.load(tenantID, "pricing.json", parsePricing)
	if err != nil {
		return nil, err
	}
	pricing := pricingVal.(*PricingTable)

	cfg := defaultConfig(tenantID)
	cfgVal, err := s.load(tenantID, "config.json", func(b []byte) (any, error) {
		return parseConfig(b, tenantID)
	})
	switch {
	case err == nil:
		cfg = cfgVal.(*ShopConfig)
	case !errors.IsCode(err, errors.CodeTenantNotFound):
		return nil, err
	}

	faq := []FAQEntry{}
	faqVal, err := s.load(tenantID, "faq.json", parseFAQ)
	switch {
	case err == nil:
		faq = faqVal.([]FAQEntry)
	case !errors.IsCode(err, errors.CodeTenantNotFound):
		return nil, err
	}

	return &Data{ID: tenantID, Pricing: pricing, Config: cfg, FAQ: faq}, nil
}

// load returns the cached parse of one tenant file, re-reading it when the
// modification time changed. A missing file maps to TenantNotFound so callers
// can distinguish absence from corruption.
func (s *Store) load(tenantID, name string, parse func([]byte) (any, error)) (any, error) {
	path := filepath.Join(s.dir, tenantID, name)
	fi, err := os.Stat(path)
	if err != nil {
		return nil, errors.TenantNotFound(tenantID)
	}

	key := cacheKey{tenant: tenantID, file: name}
	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && entry.mtime.Equal(fi.ModTime()) {
		return entry.value, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("read %s for tenant %s", name, tenantID), err)
	}
	value, err := parse(raw)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("parse %s for tenant %s", name, tenantID), err)
	}

	s.mu.Lock()
	s.cache[key] = &cacheEntry{mtime: fi.ModTime(), value: value}
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("tenant file loaded",
			zap.String("tenant", tenantID),
			zap.String("file", name))
	}
	return value, nil
}

// pricing.json

type rawPricing struct {
	ScreenPrint struct {
		GarmentBase json.Number                       `json:"garment_base"`
		MinQty      int                               `json:"min_qty"`
		MaxQty      int                               `json:"max_qty"`
		Tiers       map[string]map[string]json.Number `json:"tiers"`
	} `json:"screen_print"`
	AltSmallOrderMessage string `json:"alt_small_order_message"`
}

var colorKeyPattern = regexp.MustCompile(`^(\d+)_colors?$`)

func parsePricing(raw []byte) (any, error) {
	var rp rawPricing
	if err := json.Unmarshal(raw, &rp); err != nil {
		return nil, err
	}

	table := &PricingTable{
		MinQty: rp.ScreenPrint.MinQty,
		MaxQty: rp.ScreenPrint.MaxQty,
		Tiers:  make(map[int][]domain.QuantityBand, len(rp.ScreenPrint.Tiers)),
	}
	if rp.ScreenPrint.GarmentBase != "" {
		base, err := decimal.NewFromString(rp.ScreenPrint.GarmentBase.String())
		if err != nil {
			return nil, fmt.Errorf("garment_base: %w", err)
		}
		table.GarmentBase = base
	}
	if table.MinQty <= 0 {
		table.MinQty = 1
	}
	if table.MaxQty <= 0 {
		table.MaxQty = unboundedQty
	}

	for colorKey, bands := range rp.ScreenPrint.Tiers {
		m := colorKeyPattern.FindStringSubmatch(colorKey)
		if m == nil {
			return nil, fmt.Errorf("tier key %q: want <n>_color or <n>_colors", colorKey)
		}
		colors, _ := strconv.Atoi(m[1])
		if colors < 1 {
			return nil, fmt.Errorf("tier key %q: color count must be positive", colorKey)
		}

		parsed := make([]domain.QuantityBand, 0, len(bands))
		for rangeKey, price := range bands {
			band, err := domain.ParseBandRange(rangeKey)
			if err != nil {
				return nil, fmt.Errorf("tier %q: %w", colorKey, err)
			}
			band.Price, err = decimal.NewFromString(price.String())
			if err != nil {
				return nil, fmt.Errorf("tier %q band %q: %w", colorKey, rangeKey, err)
			}
			parsed = append(parsed, band)
		}
		sort.Slice(parsed, func(i, j int) bool { return parsed[i].Lo < parsed[j].Lo })
		table.Tiers[colors] = parsed
		if colors > table.MaxColors {
			table.MaxColors = colors
		}
	}
	if table.MaxColors == 0 {
		table.MaxColors = 12
	}

	table.SmallOrderMessage = rp.AltSmallOrderMessage
	if table.SmallOrderMessage == "" {
		table.SmallOrderMessage = fmt.Sprintf(
			"Our screen print minimum is %d pieces. For smaller runs, ask us about alternatives!",
			table.MinQty)
	}

	if err := table.validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// config.json

type rawShopConfig struct {
	BrandName string `json:"brand_name"`
	Phone     string `json:"phone"`
	Website   string `json:"website"`
	LogoPath  string `json:"logo_path"`

	Printing struct {
		MaxColors  int      `json:"max_colors"`
		Placements []string `json:"placements"`
	} `json:"printing"`

	UI struct {
		Greetings       []string `json:"greetings"`
		SupportEmail    string   `json:"support_email"`
		SupportPhone    string   `json:"support_phone"`
		ShopURL         string   `json:"shop_url"`
		EnableBranching *bool    `json:"enable_branching"`
		SmallOrder      struct {
			Suggest string `json:"suggest"`
			Link    string `json:"link"`
			Label   string `json:"label"`
			CTAGet  string `json:"cta_get"`
			CTAAlt  string `json:"cta_alt"`
		} `json:"small_order"`
	} `json:"ui"`

	Garments struct {
		TiersEnabled bool `json:"tiers_enabled"`
		Tiers        map[string]struct {
			Label      string      `json:"label"`
			BlankPrice json.Number `json:"blank_price"`
		} `json:"tiers"`
		SingleBlankPrice json.Number `json:"single_blank_price"`
	} `json:"garments"`

	Console struct {
		Garments []struct {
			Key   string      `json:"key"`
			Cost  json.Number `json:"cost"`
			Label string      `json:"label"`
		} `json:"garments"`
		MaxColors             int            `json:"max_colors"`
		MaxColorsPerPlacement map[string]int `json:"max_colors_per_placement"`
		Extras                struct {
			RushMultiplier    json.Number `json:"rush_multiplier"`
			FoldBagPerShirt   json.Number `json:"fold_bag_per_shirt"`
			NamesPerShirt     json.Number `json:"names_per_shirt"`
			NumbersPerShirt   json.Number `json:"numbers_per_shirt"`
			HeatPressPerShirt json.Number `json:"heat_press_per_shirt"`
			TaggingPerShirt   json.Number `json:"tagging_per_shirt"`
		} `json:"extras"`
		GarmentMarkupPct json.Number `json:"garment_markup_pct"`
		Markup           struct {
			GarmentPct json.Number `json:"garment_pct"`
		} `json:"markup"`
		ScreenCharges struct {
			Enabled             bool        `json:"enabled"`
			PricePerScreen      json.Number `json:"price_per_screen"`
			CountWhiteUnderbase bool        `json:"count_white_underbase"`
			WaiveAtQty          int         `json:"waive_at_qty"`
			MaxScreens          int         `json:"max_screens"`
		} `json:"screen_charges"`
		UpsellModule struct {
			Enabled bool `json:"enabled"`
			Items   []struct {
				Key         string      `json:"key"`
				Label       string      `json:"label"`
				RatePerSqFt json.Number `json:"rate_per_sqft"`
			} `json:"items"`
			UI struct {
				Precision *int32 `json:"precision"`
			} `json:"ui"`
		} `json:"upsell_module"`
	} `json:"console"`
}

func defaultConfig(tenantID string) *ShopConfig {
	return &ShopConfig{
		BrandName: tenantID,
		Printing: Printing{
			MaxColors: 6,
			Placements: []string{
				domain.LocationFront, domain.LocationBack,
				domain.LocationLeftSleeve, domain.LocationRightSleeve,
			},
		},
		UI: UI{
			EnableBranching: true,
			SmallOrder:      defaultSmallOrder(),
		},
		Console: Console{
			GarmentMarkupPct: decimal.NewFromFloat(0.40),
			Upsell:           Upsell{Precision: 2},
		},
	}
}

func defaultSmallOrder() SmallOrderPolicy {
	p := SmallOrderPolicy{Suggest: "dtf"}
	p.applyDefaults()
	return p
}

// applyDefaults fills label and CTA text from the resolved suggest value.
func (p *SmallOrderPolicy) applyDefaults() {
	if p.Label == "" {
		switch p.Suggest {
		case "dtf":
			p.Label = "DTF transfers"
		case "embroidery":
			p.Label = "Embroidery"
		}
	}
	if p.CTAGet == "" {
		switch p.Suggest {
		case "dtf":
			p.CTAGet = "Get DTF Quote"
		case "embroidery":
			p.CTAGet = "Get Embroidery Quote"
		}
	}
	if p.CTAAlt == "" {
		p.CTAAlt = "Change Quantity"
	}
}

func parseConfig(raw []byte, tenantID string) (any, error) {
	var rc rawShopConfig
	if err := json.Unmarshal(raw, &rc); err != nil {
		return nil, err
	}

	cfg := defaultConfig(tenantID)
	if rc.BrandName != "" {
		cfg.BrandName = rc.BrandName
	}
	cfg.Phone = rc.Phone
	cfg.Website = rc.Website
	cfg.LogoPath = rc.LogoPath

	if rc.Printing.MaxColors > 0 {
		cfg.Printing.MaxColors = rc.Printing.MaxColors
	}
	if len(rc.Printing.Placements) > 0 {
		cfg.Printing.Placements = rc.Printing.Placements
	}

	cfg.UI.Greetings = rc.UI.Greetings
	cfg.UI.SupportEmail = rc.UI.SupportEmail
	cfg.UI.SupportPhone = rc.UI.SupportPhone
	cfg.UI.ShopURL = rc.UI.ShopURL
	if rc.UI.EnableBranching != nil {
		cfg.UI.EnableBranching = *rc.UI.EnableBranching
	}
	so := rc.UI.SmallOrder
	cfg.UI.SmallOrder = SmallOrderPolicy{
		Suggest: strings.ToLower(so.Suggest),
		Link:    so.Link,
		Label:   so.Label,
		CTAGet:  so.CTAGet,
		CTAAlt:  so.CTAAlt,
	}
	if cfg.UI.SmallOrder.Suggest == "" {
		cfg.UI.SmallOrder.Suggest = "dtf"
	}
	cfg.UI.SmallOrder.applyDefaults()
	switch cfg.UI.SmallOrder.Suggest {
	case "dtf", "embroidery", "none":
	default:
		return nil, fmt.Errorf("ui.small_order.suggest %q: want dtf, embroidery, or none",
			cfg.UI.SmallOrder.Suggest)
	}

	cfg.Garments.TiersEnabled = rc.Garments.TiersEnabled
	if len(rc.Garments.Tiers) > 0 {
		cfg.Garments.Tiers = make(map[string]GarmentTier, len(rc.Garments.Tiers))
		for key, t := range rc.Garments.Tiers {
			price, err := parseMoney(t.BlankPrice)
			if err != nil {
				return nil, fmt.Errorf("garments.tiers[%s].blank_price: %w", key, err)
			}
			label := t.Label
			if label == "" {
				label = key
			}
			cfg.Garments.Tiers[key] = GarmentTier{Label: label, BlankPrice: price}
		}
		cfg.Garments.TierOrder = tierDisplayOrder(cfg.Garments.Tiers)
	}
	if rc.Garments.SingleBlankPrice != "" {
		price, err := parseMoney(rc.Garments.SingleBlankPrice)
		if err != nil {
			return nil, fmt.Errorf("garments.single_blank_price: %w", err)
		}
		cfg.Garments.SingleBlankPrice = &price
	}

	if err := parseConsole(&cfg.Console, &rc); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseConsole(console *Console, rc *rawShopConfig) error {
	raw := rc.Console
	if len(raw.Garments) > 0 {
		console.Garments = make(map[string]ConsoleGarment, len(raw.Garments))
		for _, g := range raw.Garments {
			if g.Key == "" {
				return fmt.Errorf("console.garments: entry missing key")
			}
			cost, err := parseMoney(g.Cost)
			if err != nil {
				return fmt.Errorf("console.garments[%s].cost: %w", g.Key, err)
			}
			label := g.Label
			if label == "" {
				label = g.Key
			}
			console.Garments[g.Key] = ConsoleGarment{Cost: cost, Label: label}
		}
	}
	console.MaxColors = raw.MaxColors
	console.MaxColorsPerPlacement = raw.MaxColorsPerPlacement

	ex := raw.Extras
	rush, err := parseMoney(ex.RushMultiplier)
	if err != nil {
		return fmt.Errorf("console.extras.rush_multiplier: %w", err)
	}
	console.Extras.RushRate = rush
	console.Extras.PerUnit = make(map[string]decimal.Decimal, len(domain.ExtraKeys))
	perUnit := map[string]json.Number{
		"fold_bag":   ex.FoldBagPerShirt,
		"names":      ex.NamesPerShirt,
		"numbers":    ex.NumbersPerShirt,
		"heat_press": ex.HeatPressPerShirt,
		"tagging":    ex.TaggingPerShirt,
	}
	for key, n := range perUnit {
		v, err := parseMoney(n)
		if err != nil {
			return fmt.Errorf("console.extras[%s]: %w", key, err)
		}
		console.Extras.PerUnit[key] = v
	}

	// garment_markup_pct wins over the older markup.garment_pct spelling.
	if raw.GarmentMarkupPct != "" {
		console.GarmentMarkupPct, err = parseMoney(raw.GarmentMarkupPct)
	} else if raw.Markup.GarmentPct != "" {
		console.GarmentMarkupPct, err = parseMoney(raw.Markup.GarmentPct)
	}
	if err != nil {
		return fmt.Errorf("console garment markup: %w", err)
	}

	sc := raw.ScreenCharges
	console.Screens.Enabled = sc.Enabled
	console.Screens.CountWhiteUnderbase = sc.CountWhiteUnderbase
	console.Screens.WaiveAtQty = sc.WaiveAtQty
	console.Screens.MaxScreens = sc.MaxScreens
	console.Screens.PricePerScreen, err = parseMoney(sc.PricePerScreen)
	if err != nil {
		return fmt.Errorf("console.screen_charges.price_per_screen: %w", err)
	}

	up := raw.UpsellModule
	console.Upsell.Enabled = up.Enabled
	if up.UI.Precision != nil {
		console.Upsell.Precision = *up.UI.Precision
	}
	if len(up.Items) > 0 {
		console.Upsell.Items = make(map[string]UpsellItem, len(up.Items))
		for _, item := range up.Items {
			if item.Key == "" {
				return fmt.Errorf("console.upsell_module.items: entry missing key")
			}
			rate, err := parseMoney(item.RatePerSqFt)
			if err != nil {
				return fmt.Errorf("console.upsell_module.items[%s].rate_per_sqft: %w", item.Key, err)
			}
			label := item.Label
			if label == "" {
				label = item.Key
			}
			console.Upsell.Items[item.Key] = UpsellItem{Label: label, RatePerSqFt: rate}
		}
	}
	return nil
}

// tierDisplayOrder puts the conventional good/better/best keys first, then
// any remaining keys alphabetically.
func tierDisplayOrder(tiers map[string]GarmentTier) []string {
	order := make([]string, 0, len(tiers))
	for _, key := range []string{"good", "better", "best"} {
		if _, ok := tiers[key]; ok {
			order = append(order, key)
		}
	}
	var rest []string
	for key := range tiers {
		switch key {
		case "good", "better", "best":
		default:
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func parseMoney(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(n.String())
}

// faq.json

type rawFAQ struct {
	FAQs []struct {
		Comment  string   `json:"_comment"`
		ID       string   `json:"id"`
		Triggers []string `json:"triggers"`
		Tags     []string `json:"tags"`
		Type     string   `json:"type"`
		Answer   string   `json:"answer"`
		Action   string   `json:"action"`
		Prompt   string   `json:"prompt"`
		Options  []struct {
			Label  string `json:"label"`
			Answer string `json:"answer"`
		} `json:"options"`
	} `json:"faqs"`
}

func parseFAQ(raw []byte) (any, error) {
	var rf rawFAQ
	if err := json.Unmarshal(raw, &rf); err != nil {
		return nil, err
	}

	entries := make([]FAQEntry, 0, len(rf.FAQs))
	for i, item := range rf.FAQs {
		if item.Comment != "" {
			continue
		}
		entry := FAQEntry{
			ID:       item.ID,
			Triggers: item.Triggers,
			Type:     item.Type,
			Answer:   item.Answer,
			Action:   item.Action,
			Prompt:   item.Prompt,
		}
		if len(entry.Triggers) == 0 {
			entry.Triggers = item.Tags
		}
		if entry.ID == "" {
			entry.ID = fmt.Sprintf("faq_%d", i)
		}
		for _, opt := range item.Options {
			entry.Options = append(entry.Options, FAQOption{Label: opt.Label, Answer: opt.Answer})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
