package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/catalog"
	"sitebuilder/internal/domain"
)

func TestDefaultRegistry_CoversEveryBuilderType(t *testing.T) {
	want := []domain.ComponentType{
		domain.ComponentHero,
		domain.ComponentIconsSection,
		domain.ComponentBackgroundSection,
		domain.ComponentHeading,
		domain.ComponentParagraph,
		domain.ComponentButton,
		domain.ComponentImage,
		domain.ComponentGallery,
		domain.ComponentTestimonial,
		domain.ComponentDivider,
		domain.ComponentSpacer,
	}
	assert.Equal(t, want, catalog.Default().Types())

	for _, typ := range want {
		props, err := catalog.DefaultProps(typ)
		require.NoError(t, err, typ)
		assert.NotEmpty(t, props, typ)
		assert.NoError(t, catalog.Validate(typ, props), "defaults of %s must satisfy their own schema", typ)
	}
}

func TestDefaultProps_UnknownType(t *testing.T) {
	_, err := catalog.DefaultProps(domain.ComponentUnknown)
	require.ErrorIs(t, err, catalog.ErrUnknownType)

	_, err = catalog.DefaultProps("carousel")
	require.ErrorIs(t, err, catalog.ErrUnknownType)
	assert.Contains(t, err.Error(), "carousel")
}

func TestDefaultProps_ReturnsFreshCopy(t *testing.T) {
	first, err := catalog.DefaultProps(domain.ComponentGallery)
	require.NoError(t, err)

	first["columns"] = 99
	images := first["images"].([]any)
	images[0].(map[string]any)["alt"] = "mutated"

	second, err := catalog.DefaultProps(domain.ComponentGallery)
	require.NoError(t, err)
	assert.Equal(t, 3, second["columns"])
	assert.Equal(t, "Gallery image 1", second["images"].([]any)[0].(map[string]any)["alt"])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		typ     domain.ComponentType
		props   domain.Props
		wantErr bool
	}{
		{"valid heading", domain.ComponentHeading, domain.Props{"text": "Hi", "level": 3}, false},
		{"heading level out of range", domain.ComponentHeading, domain.Props{"level": 9}, true},
		{"heading level not integer", domain.ComponentHeading, domain.Props{"level": 2.5}, true},
		{"button variant not in options", domain.ComponentButton, domain.Props{"variant": "neon"}, true},
		{"unknown props tolerated", domain.ComponentParagraph, domain.Props{"text": "x", "fontFamily": "serif"}, false},
		{"boolean must be boolean", domain.ComponentHero, domain.Props{"overlay": "yes"}, true},
		{"gallery item shape", domain.ComponentGallery, domain.Props{"images": []any{map[string]any{"src": 42}}}, true},
		{"opacity bounds", domain.ComponentBackgroundSection, domain.Props{"overlayOpacity": 1.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := catalog.Validate(tt.typ, tt.props)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegistry_RegisterDuplicatePanics(t *testing.T) {
	r := catalog.NewRegistry()
	r.Register(catalog.Entry{Type: "banner", Defaults: domain.Props{"text": "x"}})
	assert.True(t, r.Known("banner"))
	assert.Panics(t, func() {
		r.Register(catalog.Entry{Type: "banner"})
	})
}

func TestLookup_IsolatesDefaults(t *testing.T) {
	e, err := catalog.Lookup(domain.ComponentSpacer)
	require.NoError(t, err)
	assert.Equal(t, "Spacer", e.Label)
	e.Defaults["height"] = 1

	again, err := catalog.Lookup(domain.ComponentSpacer)
	require.NoError(t, err)
	assert.Equal(t, 48, again.Defaults["height"])
}
