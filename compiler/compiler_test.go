package compiler_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/compiler"
	"github.com/syssam/fluentmap/compiler/visit"
	"github.com/syssam/fluentmap/conventions"
	"github.com/syssam/fluentmap/internal/shop"
	"github.com/syssam/fluentmap/model"
	"github.com/syssam/fluentmap/schema"
	"github.com/syssam/fluentmap/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerMap(d *shop.Domain) *schema.ClassMap {
	c := schema.NewClassMap(d.Customer)
	c.Table("clients")
	c.Id("Id").GeneratedBy().Identity()
	c.Map("Name").Length(100)
	c.References("Region")
	return c
}

func regionMap(d *shop.Domain) *schema.ClassMap {
	c := schema.NewClassMap(d.Region)
	c.Id("Id").GeneratedBy().Assigned()
	c.Map("Name")
	return c
}

func compile(t *testing.T, opts ...compiler.Option) *model.Document {
	t.Helper()
	doc, err := compiler.Compile(context.Background(), opts...)
	require.NoError(t, err)
	return doc
}

func classNames(doc *model.Document) []string {
	names := make([]string, len(doc.Classes))
	for i, c := range doc.Classes {
		names[i] = c.Type.ShortName()
	}
	return names
}

func TestCompile_Manual(t *testing.T) {
	require := require.New(t)
	d := shop.New()

	doc := compile(t, compiler.WithProviders(customerMap(d), regionMap(d)))
	require.Equal([]string{"Customer", "Region"}, classNames(doc))

	customer, ok := doc.Class("Customer")
	require.True(ok)
	require.Equal("clients", customer.TableName())
	id := customer.Id.(*model.IdMapping)
	require.Equal("identity", id.Generator.Class())
	require.Equal([]string{"Region_id"}, customer.References[0].Columns.Names())

	region, _ := doc.Class("Region")
	require.Equal("assigned", region.Id.(*model.IdMapping).Generator.Class())
}

func TestCompile_Subclasses(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	vip := schema.NewSubclassMap(d.VipCustomer)
	vip.Map("Discount")
	gold := schema.NewSubclassMap(d.GoldMember)
	gold.Map("Concierge")

	// Registration order must not matter.
	doc := compile(t, compiler.WithProviders(gold, customerMap(d), regionMap(d), vip))
	customer, ok := doc.Class("Customer")
	require.True(ok)
	require.Len(customer.Subclasses, 1)
	require.Same(d.VipCustomer, customer.Subclasses[0].Type)
	require.Equal(model.JoinedSubclass, customer.Subclasses[0].SubclassType)
	require.Len(customer.Subclasses[0].Subclasses, 1)
	require.Same(d.GoldMember, customer.Subclasses[0].Subclasses[0].Type)
}

func TestCompile_Automap(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	auto := schema.AutoMap(fluentmap.NewCollectionSource(d.Entities()...))

	doc := compile(t, compiler.WithProviders(auto))
	require.Equal([]string{"Region", "Customer", "Order", "Product"}, classNames(doc))
	customer, _ := doc.Class("Customer")
	require.Len(customer.Subclasses, 1)
	require.Len(customer.Subclasses[0].Subclasses, 1)
}

func TestCompile_ManualWinsOverAutomap(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	auto := schema.AutoMap(fluentmap.NewCollectionSource(d.Region, d.Customer))

	doc := compile(t, compiler.WithProviders(auto, customerMap(d)))
	require.Equal([]string{"Customer", "Region"}, classNames(doc), "manual fragments are filed first")
	customer, _ := doc.Class("Customer")
	require.Equal("clients", customer.TableName())
	require.False(customer.Has("Email"), "Customer was not automapped")
}

func TestCompile_StandaloneOverride(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	auto := schema.AutoMap(fluentmap.NewCollectionSource(d.Region, d.Customer))
	override := schema.Override(d.Customer, func(m *schema.OverrideMap) {
		m.Table("people")
		m.IgnoreProperty("Email")
	})
	orphan := schema.Override(d.Product, func(m *schema.OverrideMap) { m.Table("goods") })

	doc := compile(t, compiler.WithProviders(override, auto, orphan))
	customer, ok := doc.Class("Customer")
	require.True(ok)
	require.Equal("people", customer.TableName())
	require.False(customer.Has("Email"))
	_, ok = doc.Class("Product")
	require.False(ok, "an override alone maps nothing")
}

func TestCompile_Automapper(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	var seen []*types.Type
	fake := fluentmap.AutomapperFunc(func(typ *types.Type, known []*types.Type, _ *fluentmap.AutomappingEntitySetup) ([]model.TopMapping, error) {
		seen = append(seen, typ)
		require.Len(known, 2)
		c := model.NewClass(typ)
		c.Id = model.NewId(typ.MustMember("Id"))
		return []model.TopMapping{c}, nil
	})

	doc := compile(t,
		compiler.WithAutomapper(fake),
		compiler.WithProviders(customerMap(d), schema.AutoMap(fluentmap.NewCollectionSource(d.Customer, d.Product))),
	)
	require.Equal([]*types.Type{d.Product}, seen)
	require.Equal([]string{"Customer", "Product"}, classNames(doc))

	boom := errors.New("boom")
	failing := fluentmap.AutomapperFunc(func(*types.Type, []*types.Type, *fluentmap.AutomappingEntitySetup) ([]model.TopMapping, error) {
		return nil, boom
	})
	_, err := compiler.Compile(context.Background(),
		compiler.WithAutomapper(failing),
		compiler.WithProviders(schema.AutoMap(fluentmap.NewCollectionSource(d.Product))),
	)
	require.ErrorIs(err, boom)
	require.Contains(err.Error(), "shop.Product")
}

func TestCompile_Sources(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	src := &fluentmap.ProviderList{Name: "shop", Items: []fluentmap.Provider{regionMap(d)}}

	doc := compile(t,
		compiler.WithSources(src),
		compiler.WithProviders(customerMap(d)),
	)
	require.Equal([]string{"Customer", "Region"}, classNames(doc), "instances precede sources")
}

type bogusAction struct{}

func (bogusAction) String() string { return "bogus" }

func TestCompile_Errors(t *testing.T) {
	d := shop.New()
	noId := schema.NewClassMap(d.Product)
	noId.Map("Name")
	badMember := schema.NewClassMap(d.Product)
	badMember.Map("Nickname")

	tests := []struct {
		name      string
		providers []fluentmap.Provider
		check     func(error) bool
	}{
		{
			name:      "UnrecognizedAction",
			providers: []fluentmap.Provider{fluentmap.ProviderFunc(func() fluentmap.Action { return bogusAction{} })},
			check:     func(err error) bool { return errors.Is(err, fluentmap.ErrUnrecognizedAction) },
		},
		{
			name:      "Duplicate",
			providers: []fluentmap.Provider{customerMap(d), customerMap(d)},
			check:     func(err error) bool { return errors.Is(err, fluentmap.ErrDuplicateMapping) },
		},
		{
			name:      "Validation",
			providers: []fluentmap.Provider{noId},
			check:     fluentmap.IsValidationError,
		},
		{
			name:      "ProviderError",
			providers: []fluentmap.Provider{badMember},
			check:     fluentmap.IsConfigError,
		},
		{
			name: "MissingComponent",
			providers: []fluentmap.Provider{func() fluentmap.Provider {
				c := schema.NewClassMap(d.Customer)
				c.Id("Id")
				c.ComponentRef("Address")
				return c
			}()},
			check: fluentmap.IsMissingComponent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compiler.Compile(context.Background(), compiler.WithProviders(tt.providers...))
			require.Error(t, err)
			require.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestCompile_WithoutValidation(t *testing.T) {
	d := shop.New()
	noId := schema.NewClassMap(d.Product)
	noId.Map("Name")
	doc := compile(t, compiler.WithProviders(noId), compiler.WithValidation(false))
	require.Len(t, doc.Classes, 1)
}

func TestCompile_SingleUse(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	c, err := compiler.New(compiler.WithProviders(regionMap(d)))
	require.NoError(err)

	_, err = c.Compile(context.Background())
	require.NoError(err)
	_, err = c.Compile(context.Background())
	require.ErrorIs(err, compiler.ErrCompiled)
}

func TestCompile_Canceled(t *testing.T) {
	d := shop.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := compiler.Compile(ctx, compiler.WithProviders(regionMap(d)))
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompile_Conventions(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	auto := schema.AutoMap(fluentmap.NewCollectionSource(d.Region))

	doc := compile(t,
		compiler.WithProviders(customerMap(d), auto),
		compiler.WithConventions(conventions.PluralizeTableNames(), conventions.DefaultLazy.Never()),
	)
	region, _ := doc.Class("Region")
	require.Equal("regions", region.TableName())
	customer, _ := doc.Class("Customer")
	require.Equal("clients", customer.TableName(), "user supplied table survives")
	lazy, ok := model.Lookup(doc, model.Doc.DefaultLazy)
	require.True(ok)
	require.False(lazy)
}

func TestCompile_DocumentVisitors(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	var classes int
	count := visit.DocumentFunc{Pass: "count", Fn: func(doc *model.Document) error {
		classes = len(doc.Classes)
		return nil
	}}
	compile(t, compiler.WithProviders(customerMap(d), regionMap(d)), compiler.WithVisitors(count))
	require.Equal(2, classes, "visitors see the assembled document")

	boom := errors.New("boom")
	fail := visit.DocumentFunc{Pass: "fail", Fn: func(*model.Document) error { return boom }}
	_, err := compiler.Compile(context.Background(), compiler.WithProviders(regionMap(d)), compiler.WithVisitors(fail))
	require.ErrorIs(err, boom)
	require.Contains(err.Error(), "fail pass")
}

func TestCompile_Tracing(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	sr := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)).Tracer("test")

	compile(t, compiler.WithProviders(regionMap(d)), compiler.WithTracer(tracer))
	var names []string
	for _, s := range sr.Ended() {
		names = append(names, s.Name())
	}
	require.Contains(names, "fluentmap.compile")
	require.Contains(names, "fluentmap.pass.subclass-pairing")
	require.Contains(names, "fluentmap.pass.validation")

	sr = tracetest.NewSpanRecorder()
	tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)).Tracer("test")
	noId := schema.NewClassMap(d.Product)
	_, err := compiler.Compile(context.Background(), compiler.WithProviders(noId), compiler.WithTracer(tracer))
	require.Error(err)
	for _, s := range sr.Ended() {
		if s.Name() == "fluentmap.compile" || s.Name() == "fluentmap.pass.validation" {
			assert.Equal(t, codes.Error, s.Status().Code, s.Name())
		}
	}
}

func TestCompiler_Documents(t *testing.T) {
	require := require.New(t)
	d := shop.New()

	c, err := compiler.New(compiler.WithProviders(customerMap(d), regionMap(d)))
	require.NoError(err)
	doc, err := c.Compile(context.Background())
	require.NoError(err)
	require.Len(c.Documents(doc), 2)

	c, err = compiler.New(compiler.WithProviders(customerMap(d), regionMap(d)), compiler.WithMergeMappings(true))
	require.NoError(err)
	doc, err = c.Compile(context.Background())
	require.NoError(err)
	require.Len(c.Documents(doc), 1)
}

func TestCompile_Deterministic(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	customer := customerMap(d)
	customer.ComponentRef("Address").ColumnPrefix("home_")
	address := schema.NewComponentMap(d.Address)
	address.Map("Street")
	address.Map("City")
	vip := schema.NewSubclassMap(d.VipCustomer)
	vip.Map("Discount")
	gold := schema.NewSubclassMap(d.GoldMember)
	gold.Map("Concierge")
	order := schema.NewClassMap(d.Order)
	order.Id("Id").GeneratedBy().Identity()
	order.Map("Number")
	order.HasManyToMany("Products")
	product := schema.NewClassMap(d.Product)
	product.Id("Id").GeneratedBy().Identity()
	product.Map("Name")
	providers := compiler.WithProviders(customer, address, regionMap(d), vip, gold, order, product)

	first := compile(t, providers)
	second := compile(t, providers)
	require.NotSame(first.Classes[0], second.Classes[0])
	require.Equal(first, second)
	for i, c := range first.Classes {
		require.True(c.Attrs().Equal(second.Classes[i].Attrs()), c.Name())
	}
	c, ok := first.Class("Customer")
	require.True(ok)
	require.Len(c.Subclasses, 1)
	require.Len(c.Components, 1)
}

func subclassProperty(s *model.SubclassMapping, name string) *model.PropertyMapping {
	for _, p := range s.Properties {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func TestCompile_SubclassOverride(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	auto := schema.AutoMap(fluentmap.NewCollectionSource(d.Customer, d.VipCustomer, d.Region)).
		Override(d.VipCustomer, func(m *schema.OverrideMap) {
			m.Table("vips")
			m.Map("Discount").Column("disc")
		})

	doc := compile(t, compiler.WithProviders(auto))
	customer, ok := doc.Class("Customer")
	require.True(ok)
	require.Len(customer.Subclasses, 1)
	vip := customer.Subclasses[0]
	require.Same(d.VipCustomer, vip.Type)
	require.Equal("vips", vip.TableName())
	discount := subclassProperty(vip, "Discount")
	require.NotNil(discount)
	require.Equal([]string{"disc"}, discount.Columns.Names())
	require.Len(vip.Properties, 1, "the overridden member is not automapped again")

	rooted := schema.AutoMap(fluentmap.NewCollectionSource(d.Customer, d.VipCustomer, d.Region)).
		Override(d.VipCustomer, func(m *schema.OverrideMap) { m.Where("active = 1") })
	_, err := compiler.Compile(context.Background(), compiler.WithProviders(rooted))
	require.True(fluentmap.IsValidationError(err), "unexpected error: %v", err)
	require.ErrorContains(err, "where")
}

func TestCompile_BucketVisitors(t *testing.T) {
	require := require.New(t)
	d := shop.New()
	var order []string
	rename := visit.Func{Pass: "rename", Fn: func(b *model.Bucket) error {
		order = append(order, "rename")
		for _, c := range b.Classes {
			if c.Type == d.Region {
				model.Set(c, model.Class.Table, model.UserSupplied, "areas")
			}
		}
		return nil
	}}
	doc := compile(t, compiler.WithProviders(regionMap(d)), compiler.WithBucketVisitors(rename))
	region, ok := doc.Class("Region")
	require.True(ok)
	require.Equal("areas", region.TableName())
	require.Equal([]string{"rename"}, order)

	drop := visit.Func{Pass: "drop-id", Fn: func(b *model.Bucket) error {
		b.Classes[0].Id = nil
		return nil
	}}
	_, err := compiler.Compile(context.Background(), compiler.WithProviders(regionMap(d)), compiler.WithBucketVisitors(drop))
	require.True(fluentmap.IsValidationError(err), "bucket visitors run before validation")

	boom := errors.New("boom")
	fail := visit.Func{Pass: "fail", Fn: func(*model.Bucket) error { return boom }}
	_, err = compiler.Compile(context.Background(), compiler.WithProviders(regionMap(d)), compiler.WithBucketVisitors(fail))
	require.ErrorIs(err, boom)
	require.Contains(err.Error(), "fail pass")
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  compiler.Option
	}{
		{"Logger", compiler.WithLogger(nil)},
		{"Tracer", compiler.WithTracer(nil)},
		{"Pairing", compiler.WithPairing(nil)},
		{"Automapper", compiler.WithAutomapper(nil)},
		{"Providers", compiler.WithProviders(nil)},
		{"Container", compiler.WithConventionContainer(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compiler.New(tt.opt)
			require.True(t, fluentmap.IsConfigError(err), "unexpected error: %v", err)
		})
	}

	cfg := compiler.MustNewConfig()
	err := cfg.ApplyAll(compiler.WithLogger(nil), compiler.WithTracer(nil), compiler.WithValidation(false))
	require.Error(t, err)
	require.Len(t, err.(interface{ Unwrap() []error }).Unwrap(), 2)
	require.False(t, cfg.Validate)
	require.Panics(t, func() { compiler.MustNewConfig(compiler.WithLogger(nil)) })
}
