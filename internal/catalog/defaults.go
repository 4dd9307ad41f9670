package catalog

import "sitebuilder/internal/domain"

const placeholderImage = "/placeholder.svg?height=600&width=1200"

func bound(v float64) *float64 { return &v }

var alignmentField = Field{
	Name: "alignment", Label: "Alignment", Kind: KindSelect,
	Options: []any{"left", "center", "right"},
}

func newDefaultRegistry() *Registry {
	r := NewRegistry()

	// Sections
	r.Register(Entry{
		Type:        domain.ComponentHero,
		Label:       "Hero",
		Category:    "sections",
		Description: "Full-width banner with headline, subtitle and call to action",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText},
			{Name: "subtitle", Label: "Subtitle", Kind: KindTextarea},
			{Name: "buttonText", Label: "Button text", Kind: KindText},
			{Name: "buttonLink", Label: "Button link", Kind: KindURL},
			{Name: "backgroundImage", Label: "Background image", Kind: KindURL},
			{Name: "overlay", Label: "Dark overlay", Kind: KindBoolean},
			alignmentField,
		},
		Defaults: domain.Props{
			"title":           "Build Something Amazing",
			"subtitle":        "We craft digital experiences that help brands grow.",
			"buttonText":      "Get Started",
			"buttonLink":      "#contact",
			"backgroundImage": placeholderImage,
			"overlay":         true,
			"alignment":       "center",
		},
	})

	r.Register(Entry{
		Type:        domain.ComponentIconsSection,
		Label:       "Icons Section",
		Category:    "sections",
		Description: "Grid of icon cards, each with a title and description",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText},
			{Name: "columns", Label: "Columns", Kind: KindInteger, Min: bound(1), Max: bound(6)},
			{Name: "items", Label: "Items", Kind: KindList, Items: []Field{
				{Name: "icon", Label: "Icon", Kind: KindText},
				{Name: "title", Label: "Title", Kind: KindText},
				{Name: "description", Label: "Description", Kind: KindTextarea},
			}},
		},
		Defaults: domain.Props{
			"title":   "Our Services",
			"columns": 3,
			"items": []any{
				map[string]any{"icon": "code", "title": "Web Development", "description": "Fast, accessible sites built to scale."},
				map[string]any{"icon": "palette", "title": "Brand Design", "description": "Identities that people remember."},
				map[string]any{"icon": "smartphone", "title": "Mobile Apps", "description": "Native feel on every device."},
			},
		},
	})

	r.Register(Entry{
		Type:        domain.ComponentBackgroundSection,
		Label:       "Background Section",
		Category:    "sections",
		Description: "Text block over a background image or color",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText},
			{Name: "content", Label: "Content", Kind: KindTextarea},
			{Name: "backgroundImage", Label: "Background image", Kind: KindURL},
			{Name: "backgroundColor", Label: "Background color", Kind: KindColor},
			{Name: "textColor", Label: "Text color", Kind: KindColor},
			{Name: "overlayOpacity", Label: "Overlay opacity", Kind: KindNumber, Min: bound(0), Max: bound(1)},
		},
		Defaults: domain.Props{
			"title":           "Section Title",
			"content":         "Tell your story here.",
			"backgroundImage": placeholderImage,
			"backgroundColor": "#0f172a",
			"textColor":       "#ffffff",
			"overlayOpacity":  0.5,
		},
	})

	// Basic
	r.Register(Entry{
		Type:     domain.ComponentHeading,
		Label:    "Heading",
		Category: "basic",
		Fields: []Field{
			{Name: "text", Label: "Text", Kind: KindText},
			{Name: "level", Label: "Level", Kind: KindInteger, Min: bound(1), Max: bound(6)},
			alignmentField,
		},
		Defaults: domain.Props{
			"text":      "Heading",
			"level":     2,
			"alignment": "left",
		},
	})

	r.Register(Entry{
		Type:     domain.ComponentParagraph,
		Label:    "Paragraph",
		Category: "basic",
		Fields: []Field{
			{Name: "text", Label: "Text", Kind: KindTextarea},
			alignmentField,
		},
		Defaults: domain.Props{
			"text":      "Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
			"alignment": "left",
		},
	})

	r.Register(Entry{
		Type:     domain.ComponentButton,
		Label:    "Button",
		Category: "basic",
		Fields: []Field{
			{Name: "text", Label: "Text", Kind: KindText},
			{Name: "link", Label: "Link", Kind: KindURL},
			{Name: "variant", Label: "Variant", Kind: KindSelect, Options: []any{"primary", "secondary", "outline", "ghost"}},
			{Name: "size", Label: "Size", Kind: KindSelect, Options: []any{"sm", "md", "lg"}},
		},
		Defaults: domain.Props{
			"text":    "Click Me",
			"link":    "#",
			"variant": "primary",
			"size":    "md",
		},
	})

	// Media
	r.Register(Entry{
		Type:     domain.ComponentImage,
		Label:    "Image",
		Category: "media",
		Fields: []Field{
			{Name: "src", Label: "Source", Kind: KindURL},
			{Name: "alt", Label: "Alt text", Kind: KindText},
			{Name: "width", Label: "Width", Kind: KindInteger, Min: bound(1)},
			{Name: "height", Label: "Height", Kind: KindInteger, Min: bound(1)},
			{Name: "rounded", Label: "Rounded corners", Kind: KindBoolean},
		},
		Defaults: domain.Props{
			"src":     "/placeholder.svg?height=450&width=800",
			"alt":     "Image",
			"width":   800,
			"height":  450,
			"rounded": false,
		},
	})

	r.Register(Entry{
		Type:     domain.ComponentGallery,
		Label:    "Gallery",
		Category: "media",
		Fields: []Field{
			{Name: "columns", Label: "Columns", Kind: KindInteger, Min: bound(1), Max: bound(6)},
			{Name: "gap", Label: "Gap", Kind: KindInteger, Min: bound(0)},
			{Name: "images", Label: "Images", Kind: KindList, Items: []Field{
				{Name: "src", Label: "Source", Kind: KindURL},
				{Name: "alt", Label: "Alt text", Kind: KindText},
			}},
		},
		Defaults: domain.Props{
			"columns": 3,
			"gap":     16,
			"images": []any{
				map[string]any{"src": "/placeholder.svg?height=300&width=400", "alt": "Gallery image 1"},
				map[string]any{"src": "/placeholder.svg?height=300&width=400", "alt": "Gallery image 2"},
				map[string]any{"src": "/placeholder.svg?height=300&width=400", "alt": "Gallery image 3"},
			},
		},
	})

	r.Register(Entry{
		Type:     domain.ComponentTestimonial,
		Label:    "Testimonial",
		Category: "media",
		Fields: []Field{
			{Name: "quote", Label: "Quote", Kind: KindTextarea},
			{Name: "author", Label: "Author", Kind: KindText},
			{Name: "role", Label: "Role", Kind: KindText},
			{Name: "avatar", Label: "Avatar", Kind: KindURL},
			{Name: "rating", Label: "Rating", Kind: KindInteger, Min: bound(0), Max: bound(5)},
		},
		Defaults: domain.Props{
			"quote":  "Working with this team was the best decision we made this year.",
			"author": "Jane Doe",
			"role":   "CEO, Company",
			"avatar": "/placeholder.svg?height=64&width=64",
			"rating": 5,
		},
	})

	// Layout
	r.Register(Entry{
		Type:     domain.ComponentDivider,
		Label:    "Divider",
		Category: "layout",
		Fields: []Field{
			{Name: "style", Label: "Style", Kind: KindSelect, Options: []any{"solid", "dashed", "dotted"}},
			{Name: "thickness", Label: "Thickness", Kind: KindInteger, Min: bound(1), Max: bound(16)},
			{Name: "color", Label: "Color", Kind: KindColor},
		},
		Defaults: domain.Props{
			"style":     "solid",
			"thickness": 1,
			"color":     "#e5e7eb",
		},
	})

	r.Register(Entry{
		Type:     domain.ComponentSpacer,
		Label:    "Spacer",
		Category: "layout",
		Fields: []Field{
			{Name: "height", Label: "Height", Kind: KindInteger, Min: bound(0), Max: bound(512)},
		},
		Defaults: domain.Props{
			"height": 48,
		},
	})

	return r
}
