package output

import (
	"sort"

	"github.com/arthur-debert/genx/pkg/container"
	"github.com/arthur-debert/genx/pkg/feature"
	"github.com/arthur-debert/genx/pkg/types"
)

// FeatureReport is one resolved feature
type FeatureReport struct {
	Name   string
	Source string
	Loaded bool
}

// StageReport groups the features of a stage
type StageReport struct {
	Stage    string
	Features []FeatureReport
}

// Report summarises a container bootstrap
type Report struct {
	App      string
	Env      string
	State    string
	Stages   []StageReport
	Services []string
	Error    string
}

// NewReport captures the state of c. It must be called before c stops,
// since stopping drops the registries.
func NewReport(c *container.Container, err error) *Report {
	report := &Report{
		App:      c.Name(),
		Env:      c.Env(),
		State:    c.State().String(),
		Services: c.ServiceNames(),
	}
	if err != nil {
		report.Error = err.Error()
	}

	byStage := make(map[types.Stage][]FeatureReport)
	for _, rec := range c.Features() {
		byStage[rec.Feature.Stage] = append(byStage[rec.Feature.Stage], FeatureReport{
			Name:   rec.Name,
			Source: rec.Source,
			Loaded: rec.Loaded,
		})
	}
	for _, stage := range types.AllStages {
		if features := byStage[stage]; len(features) > 0 {
			report.Stages = append(report.Stages, StageReport{Stage: stage.String(), Features: features})
		}
	}
	return report
}

// CatalogFeature describes one export of a module
type CatalogFeature struct {
	Name        string
	Stage       string
	Groupable   bool
	Description string
}

// CatalogModule lists the features of a module
type CatalogModule struct {
	Path     string
	Features []CatalogFeature
}

// CatalogReport lists every module in a catalog
type CatalogReport struct {
	Modules []CatalogModule
}

// defaultExport names a module's default feature in listings
const defaultExport = "(default)"

// NewCatalogReport describes catalog
func NewCatalogReport(catalog *feature.Catalog) *CatalogReport {
	report := &CatalogReport{}
	for _, path := range catalog.Modules() {
		m, err := catalog.Module(path)
		if err != nil {
			continue
		}

		mod := CatalogModule{Path: path}
		if m.Default != nil {
			mod.Features = append(mod.Features, describe(defaultExport, m.Default))
		}
		for _, name := range m.ExportNames() {
			f, _ := m.Export(name)
			mod.Features = append(mod.Features, describe(name, f))
		}
		report.Modules = append(report.Modules, mod)
	}
	sort.Slice(report.Modules, func(i, j int) bool { return report.Modules[i].Path < report.Modules[j].Path })
	return report
}

func describe(name string, f *types.Feature) CatalogFeature {
	return CatalogFeature{
		Name:        name,
		Stage:       f.Stage.String(),
		Groupable:   f.Groupable,
		Description: f.Description,
	}
}
