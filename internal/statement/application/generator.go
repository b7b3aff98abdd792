package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"municipal-statements/internal/observability/metrics"
	statement "municipal-statements/internal/statement/domain"
	"municipal-statements/internal/statement/layout"
)

// PDFContentType is the media type of generated statements.
const PDFContentType = "application/pdf"

// Source names used in logs and metrics.
const (
	SourceAccountMaster = "account_master"
	SourceAgedAnalysis  = "aged_analysis"
	SourceMeterReadings = "meter_readings"
	SourceLevyLines     = "levy_lines"
)

// AssetProvider loads image bytes by asset name.
type AssetProvider interface {
	Asset(ctx context.Context, name string) ([]byte, error)
}

// PaymentLinker resolves the per-customer payment URL.
type PaymentLinker interface {
	Link(model statement.StatementModel) (string, error)
}

// SurfaceFactory returns a fresh drawing surface for one statement.
type SurfaceFactory func(model statement.StatementModel) layout.Surface

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// LogoRef describes a logo: the asset to load, its caption and static link.
type LogoRef struct {
	Name  string
	Label string
	Asset string
	URL   string
}

// Branding is the static reference data printed on every statement.
type Branding struct {
	Title        string
	Municipality layout.Municipality
	HeaderLogo   LogoRef
	PaymentLogo  LogoRef
	BankLogos    []LogoRef
	Disclaimer   []string
	Banking      statement.BankingDetails
}

// Request identifies the statement to generate.
type Request struct {
	AccountNumber string
	Year          string
	Month         string
}

// Document is a generated statement ready for download.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
	Pages       int
	Model       statement.StatementModel
}

// Generator runs the statement pipeline: validate, read, aggregate, lay out
// and render.
type Generator struct {
	readers  *SourceReaders
	links    PaymentLinker
	surfaces SurfaceFactory
	assets   AssetProvider
	branding Branding
	clock    Clock
	logger   *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithAssets sets the logo asset provider. Without one every logo is drawn
// as a placeholder.
func WithAssets(assets AssetProvider) GeneratorOption {
	return func(g *Generator) {
		g.assets = assets
	}
}

// WithBranding sets the static reference data.
func WithBranding(branding Branding) GeneratorOption {
	return func(g *Generator) {
		g.branding = branding
	}
}

// WithClock overrides the generation clock.
func WithClock(clock Clock) GeneratorOption {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator constructs the statement generator.
func NewGenerator(readers *SourceReaders, links PaymentLinker, surfaces SurfaceFactory, opts ...GeneratorOption) (*Generator, error) {
	if readers == nil {
		return nil, errors.New("statement generator: nil source readers")
	}
	if links == nil {
		return nil, errors.New("statement generator: nil payment linker")
	}
	if surfaces == nil {
		return nil, errors.New("statement generator: nil surface factory")
	}
	g := &Generator{
		readers:  readers,
		links:    links,
		surfaces: surfaces,
		clock:    SystemClock{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Filename returns Statement_{account}_{yyyyMMdd}.pdf for the generation date.
func Filename(accountNumber string, generatedAt time.Time) string {
	return fmt.Sprintf("Statement_%s_%s.pdf", accountNumber, generatedAt.Format("20060102"))
}

// Generate builds the PDF statement for req.
func (g *Generator) Generate(ctx context.Context, req Request) (doc Document, err error) {
	start := time.Now()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		metrics.ObserveStatementGenerate(result, time.Since(start))
	}()

	model, logos, err := g.assemble(ctx, req, true)
	if err != nil {
		return Document{}, err
	}

	log := g.logger.With("account", model.AccountNumber, "period", model.Period.String())
	opts := layout.Options{
		Title:        g.branding.Title,
		Municipality: g.branding.Municipality,
		HeaderLogo:   logos.header,
		PaymentLogo:  logos.payment,
		BankLogos:    logos.banks,
		Disclaimer:   g.branding.Disclaimer,
		PaymentLink:  g.links.Link,
		OnAssetFallback: func(asset string, err error) {
			metrics.IncAssetFallback(asset)
			log.Warn("statement asset placeholder drawn", "asset", asset, "error", err)
		},
	}

	surface := g.surfaces(model)
	if surface == nil {
		return Document{}, errors.New("statement generator: surface factory returned nil")
	}
	result, err := layout.Render(model, surface, opts)
	if err != nil {
		return Document{}, err
	}
	var buf bytes.Buffer
	if err := surface.Output(&buf); err != nil {
		return Document{}, fmt.Errorf("statement generator: render output: %w", err)
	}

	return Document{
		Filename:    Filename(model.AccountNumber, model.GeneratedAt),
		ContentType: PDFContentType,
		Data:        buf.Bytes(),
		Pages:       result.Pages,
		Model:       model,
	}, nil
}

// BuildModel runs the read and aggregation stages only. Logo assets are not
// fetched.
func (g *Generator) BuildModel(ctx context.Context, req Request) (statement.StatementModel, error) {
	model, _, err := g.assemble(ctx, req, false)
	return model, err
}

type resolvedLogos struct {
	header  layout.Logo
	payment layout.Logo
	banks   []layout.Logo
}

func (g *Generator) assemble(ctx context.Context, req Request, withAssets bool) (statement.StatementModel, resolvedLogos, error) {
	accountNumber := strings.TrimSpace(req.AccountNumber)
	if accountNumber == "" {
		return statement.StatementModel{}, resolvedLogos{}, statement.ErrEmptyAccountNumber
	}
	period, err := statement.NewPeriod(strings.TrimSpace(req.Year), strings.TrimSpace(req.Month))
	if err != nil {
		return statement.StatementModel{}, resolvedLogos{}, err
	}
	log := g.logger.With("account", accountNumber, "period", period.String())

	master, err := g.readers.AccountMaster(ctx, accountNumber, period)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return statement.StatementModel{}, resolvedLogos{}, ctxErr
		}
		log.Warn("statement account master unavailable", "error", err)
		return statement.StatementModel{}, resolvedLogos{}, &statement.CustomerNotFoundError{AccountNumber: accountNumber, Err: err}
	}

	sources := statement.Sources{Master: master}
	var logos resolvedLogos

	group, gctx := errgroup.WithContext(ctx)
	degradable := func(source string, read func(context.Context, string, statement.Period) (statement.Record, error), dst *statement.Record) {
		group.Go(func() error {
			doc, err := read(gctx, accountNumber, period)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				metrics.IncSourceDegraded(source)
				log.Warn("statement source degraded", "source", source, "error", err)
				return nil
			}
			*dst = doc
			return nil
		})
	}
	degradable(SourceAgedAnalysis, g.readers.AgedAnalysis, &sources.AgedAnalysis)
	degradable(SourceMeterReadings, g.readers.MeterReadings, &sources.MeterReadings)
	degradable(SourceLevyLines, g.readers.LevyLines, &sources.LevyLines)
	if withAssets {
		g.prefetchLogos(gctx, group, &logos, log)
	}
	if err := group.Wait(); err != nil {
		return statement.StatementModel{}, resolvedLogos{}, err
	}

	model, err := statement.Aggregate(statement.AggregateInput{
		AccountNumber: accountNumber,
		Period:        period,
		Sources:       sources,
		Banking:       g.branding.Banking,
		GeneratedAt:   generationDay(g.clock.Now()),
	})
	if err != nil {
		return statement.StatementModel{}, resolvedLogos{}, err
	}
	for _, warning := range model.Warnings {
		log.Warn("statement data quality", "warning", warning)
	}
	return model, logos, nil
}

// prefetchLogos fills logos and schedules one fetch per logo on group.
// Failed fetches leave the logo without data so the renderer draws a
// placeholder. logos must not be read before group.Wait returns.
func (g *Generator) prefetchLogos(ctx context.Context, group *errgroup.Group, logos *resolvedLogos, log *slog.Logger) {
	logos.header = logoFromRef(g.branding.HeaderLogo)
	logos.payment = logoFromRef(g.branding.PaymentLogo)
	logos.banks = make([]layout.Logo, len(g.branding.BankLogos))
	for i, ref := range g.branding.BankLogos {
		logos.banks[i] = logoFromRef(ref)
	}
	if g.assets == nil {
		return
	}

	targets := []*layout.Logo{&logos.header, &logos.payment}
	for i := range logos.banks {
		targets = append(targets, &logos.banks[i])
	}
	refs := append([]LogoRef{g.branding.HeaderLogo, g.branding.PaymentLogo}, g.branding.BankLogos...)
	for i, target := range targets {
		target := target
		asset := refs[i].Asset
		if asset == "" {
			continue
		}
		group.Go(func() error {
			data, err := g.assets.Asset(ctx, asset)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Warn("statement asset unavailable", "asset", asset, "error", err)
				return nil
			}
			target.Data = data
			return nil
		})
	}
}

func logoFromRef(ref LogoRef) layout.Logo {
	name := ref.Name
	if name == "" {
		name = ref.Asset
	}
	return layout.Logo{Name: name, Label: ref.Label, URL: ref.URL}
}

func generationDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
