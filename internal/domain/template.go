package domain

// TemplateType tags the kind of page a template produces.
type TemplateType string

const (
	TemplateArticle TemplateType = "article"
	TemplatePage    TemplateType = "page"
	TemplateInsight TemplateType = "insight"
	TemplateFAQ     TemplateType = "faq"
	TemplateProfile TemplateType = "profile"
)

// ContentTemplate is the immutable blueprint a Content is created from.
type ContentTemplate struct {
	ID       string            `yaml:"id" json:"id"`
	Name     string            `yaml:"name" json:"name"`
	Type     TemplateType      `yaml:"type" json:"type"`
	Sections []TemplateSection `yaml:"sections" json:"sections"`
	SEO      SEODefaults       `yaml:"seo" json:"seo"`
	AI       AICapabilities    `yaml:"ai" json:"ai"`
}

// TemplateSection is one ordered block of a template.
type TemplateSection struct {
	Name        string  `yaml:"name" json:"name"`
	Required    bool    `yaml:"required" json:"required"`
	SEOWeight   float64 `yaml:"seoWeight" json:"seoWeight"`
	AIOptimized bool    `yaml:"aiOptimized" json:"aiOptimized"`
}

// SEODefaults carries the metadata a template seeds new content with.
type SEODefaults struct {
	TitleTemplate       string          `yaml:"titleTemplate" json:"titleTemplate"`
	DescriptionTemplate string          `yaml:"descriptionTemplate" json:"descriptionTemplate"`
	Keywords            []string        `yaml:"keywords" json:"keywords"`
	SchemaType          string          `yaml:"schemaType" json:"schemaType"`
	RequiredElements    []string        `yaml:"requiredElements" json:"requiredElements"`
	InternalLinking     InternalLinking `yaml:"internalLinking" json:"internalLinking"`
}

// InternalLinking constrains how many site-internal links a page should carry.
type InternalLinking struct {
	MinLinks    int      `yaml:"minLinks" json:"minLinks"`
	MaxLinks    int      `yaml:"maxLinks" json:"maxLinks"`
	TargetPaths []string `yaml:"targetPaths" json:"targetPaths"`
}

// AICapabilities toggles which AI optimizations apply to a template.
type AICapabilities struct {
	FactExtraction            bool `yaml:"factExtraction" json:"factExtraction"`
	CitationGeneration        bool `yaml:"citationGeneration" json:"citationGeneration"`
	ReadabilityOptimization   bool `yaml:"readabilityOptimization" json:"readabilityOptimization"`
	StructuredDataEnhancement bool `yaml:"structuredDataEnhancement" json:"structuredDataEnhancement"`
}

// Clone returns a copy that shares no slices with the receiver.
func (t ContentTemplate) Clone() ContentTemplate {
	out := t
	out.Sections = append([]TemplateSection(nil), t.Sections...)
	out.SEO.Keywords = append([]string(nil), t.SEO.Keywords...)
	out.SEO.RequiredElements = append([]string(nil), t.SEO.RequiredElements...)
	out.SEO.InternalLinking.TargetPaths = append([]string(nil), t.SEO.InternalLinking.TargetPaths...)
	return out
}
