package hcladapter

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/cortexmark/cortexmark/internal/config"
)

var (
	initSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: "hook", Required: true}},
	}
	figuresSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: "init"}, {Name: "term"}},
	}
	figureSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: "hook", Required: true}},
	}
	targetSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: "values"}, {Name: "hook"}},
	}
	displaySchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: "figsize"}, {Name: "dpi"}},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "plot_options"},
			{Type: "fg_options"},
		},
	}
	annotationSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "kind"},
			{Name: "grid", Required: true},
			{Name: "filter"},
		},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "plot_options"},
			{Type: "fg_options"},
			{Type: "fixed_head"},
			{Type: "fixed_tail"},
		},
	}
	fixedSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: "ref"}, {Name: "requires"}, {Name: "calculate"}},
	}
	styleSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "color"},
			{Name: "linewidth"},
			{Name: "linestyle"},
			{Name: "markersize"},
			{Name: "visible"},
		},
	}
)

// translateBlock dispatches one top-level block into the model.
func (l *Loader) translateBlock(block *hcl.Block, model *config.Model) error {
	switch block.Type {
	case "init":
		return l.translateInit(block, model)
	case "display":
		return l.translateDisplay(block, model)
	case "figures":
		return l.translateFigures(block, model)
	case "target":
		return l.translateTarget(block, model)
	case "annotation":
		return l.translateAnnotation(block, model)
	case "figure":
		return l.translateFigure(block, model)
	}
	return nil
}

func (l *Loader) translateInit(block *hcl.Block, model *config.Model) error {
	content, diags := block.Body.Content(initSchema)
	if diags.HasErrors() {
		return config.Errorf("init", "%s", diags.Error())
	}
	if model.InitHook != "" {
		return config.Errorf("init", "duplicate init block")
	}
	hook, err := stringAttr(content, "hook", "init")
	if err != nil {
		return err
	}
	model.InitHook = hook
	return nil
}

func (l *Loader) translateDisplay(block *hcl.Block, model *config.Model) error {
	content, diags := block.Body.Content(displaySchema)
	if diags.HasErrors() {
		return config.Errorf("display", "%s", diags.Error())
	}
	if model.Display != nil {
		return config.Errorf("display", "duplicate display block")
	}
	disp := defaultDisplay()
	if attr, ok := content.Attributes["figsize"]; ok {
		v, err := evalAttr(attr, "display.figsize")
		if err != nil {
			return err
		}
		size, err := decodeFigSize(v)
		if err != nil {
			return config.Errorf("display.figsize", "%s", err)
		}
		disp.FigSize = size
	}
	if attr, ok := content.Attributes["dpi"]; ok {
		v, err := evalAttr(attr, "display.dpi")
		if err != nil {
			return err
		}
		var dpi int
		if err := gocty.FromCtyValue(v, &dpi); err != nil {
			return config.Errorf("display.dpi", "dpi must be an integer: %s", err)
		}
		disp.DPI = dpi
	}
	for _, inner := range content.Blocks {
		style, err := decodeStyle(inner.Body, "display."+inner.Type)
		if err != nil {
			return err
		}
		switch inner.Type {
		case "plot_options":
			disp.Plot = style
		case "fg_options":
			disp.Fg = style
		}
	}
	model.Display = disp
	return nil
}

func (l *Loader) translateFigures(block *hcl.Block, model *config.Model) error {
	content, diags := block.Body.Content(figuresSchema)
	if diags.HasErrors() {
		return config.Errorf("figures", "%s", diags.Error())
	}
	for name, attr := range content.Attributes {
		v, err := evalAttr(attr, "figures."+name)
		if err != nil {
			return err
		}
		var hook string
		if err := gocty.FromCtyValue(v, &hook); err != nil {
			return config.Errorf("figures."+name, "hook name must be a string: %s", err)
		}
		switch name {
		case "init":
			model.Figures.Init = hook
		case "term":
			model.Figures.Term = hook
		}
	}
	return nil
}

func (l *Loader) translateTarget(block *hcl.Block, model *config.Model) error {
	name := block.Labels[0]
	section := "targets." + name
	content, diags := block.Body.Content(targetSchema)
	if diags.HasErrors() {
		return config.Errorf(section, "%s", diags.Error())
	}
	key := &config.TargetKey{Name: name}
	if attr, ok := content.Attributes["values"]; ok {
		v, err := evalAttr(attr, section)
		if err != nil {
			return err
		}
		values, err := decodeStringList(v)
		if err != nil {
			return config.Errorf(section, "values must be a list of strings: %s", err)
		}
		key.Values = values
	}
	if attr, ok := content.Attributes["hook"]; ok {
		hook, err := stringValue(attr, section)
		if err != nil {
			return err
		}
		key.Hook = hook
	}
	for _, existing := range model.Targets {
		if existing.Name == name {
			return config.Errorf(section, "duplicate target key")
		}
	}
	model.Targets = append(model.Targets, key)
	return nil
}

func (l *Loader) translateFigure(block *hcl.Block, model *config.Model) error {
	name := block.Labels[0]
	section := "figures." + name
	content, diags := block.Body.Content(figureSchema)
	if diags.HasErrors() {
		return config.Errorf(section, "%s", diags.Error())
	}
	hook, err := stringAttr(content, "hook", section)
	if err != nil {
		return err
	}
	if name == "_" {
		if model.Figures.Wildcard != "" {
			return config.Errorf(section, "duplicate wildcard figure")
		}
		model.Figures.Wildcard = hook
		return nil
	}
	if _, dup := model.Figures.Hooks[name]; dup {
		return config.Errorf(section, "duplicate figure")
	}
	model.Figures.Hooks[name] = hook
	return nil
}

func (l *Loader) translateAnnotation(block *hcl.Block, model *config.Model) error {
	name := block.Labels[0]
	section := "annotations." + name
	content, diags := block.Body.Content(annotationSchema)
	if diags.HasErrors() {
		return config.Errorf(section, "%s", diags.Error())
	}
	if _, dup := model.Annotations[name]; dup {
		return config.Errorf(section, "duplicate annotation")
	}

	ann := &config.Annotation{Name: name, Kind: config.KindContour}
	if attr, ok := content.Attributes["kind"]; ok {
		kind, err := stringValue(attr, section+".kind")
		if err != nil {
			return err
		}
		ann.Kind = config.Kind(kind)
	}
	gridAttr := content.Attributes["grid"]
	v, err := evalAttr(gridAttr, section+".grid")
	if err != nil {
		return err
	}
	grid, err := decodeGrid(v)
	if err != nil {
		return config.Errorf(section+".grid", "%s", err)
	}
	ann.Grid = grid

	// The filter stays an unevaluated expression; it is evaluated per
	// resolved target by the filter package.
	if attr, ok := content.Attributes["filter"]; ok {
		ann.Filter = attr.Expr
	}

	for _, inner := range content.Blocks {
		switch inner.Type {
		case "plot_options":
			style, err := decodeStyle(inner.Body, section+".plot_options")
			if err != nil {
				return err
			}
			ann.PlotStyle = style
		case "fg_options":
			style, err := decodeStyle(inner.Body, section+".fg_options")
			if err != nil {
				return err
			}
			ann.FgStyle = style
		case "fixed_head", "fixed_tail":
			fixed, err := decodeFixed(inner.Body, section+"."+inner.Type)
			if err != nil {
				return err
			}
			if inner.Type == "fixed_head" {
				ann.FixedHead = fixed
			} else {
				ann.FixedTail = fixed
			}
		}
	}

	model.Annotations[name] = ann
	model.Order = append(model.Order, name)
	return nil
}

func decodeFixed(body hcl.Body, section string) (*config.FixedPoint, error) {
	content, diags := body.Content(fixedSchema)
	if diags.HasErrors() {
		return nil, config.Errorf(section, "%s", diags.Error())
	}
	fixed := &config.FixedPoint{}
	if attr, ok := content.Attributes["ref"]; ok {
		ref, err := stringValue(attr, section+".ref")
		if err != nil {
			return nil, err
		}
		fixed.Ref = ref
	}
	if attr, ok := content.Attributes["calculate"]; ok {
		calc, err := stringValue(attr, section+".calculate")
		if err != nil {
			return nil, err
		}
		fixed.Calculate = calc
	}
	if attr, ok := content.Attributes["requires"]; ok {
		v, err := evalAttr(attr, section+".requires")
		if err != nil {
			return nil, err
		}
		reqs, err := decodeStringOrList(v)
		if err != nil {
			return nil, config.Errorf(section+".requires", "%s", err)
		}
		fixed.Requires = reqs
	}
	return fixed, nil
}

func decodeStyle(body hcl.Body, section string) (config.Style, error) {
	content, diags := body.Content(styleSchema)
	if diags.HasErrors() {
		return config.Style{}, config.Errorf(section, "%s", diags.Error())
	}
	var style config.Style
	for name, attr := range content.Attributes {
		v, err := evalAttr(attr, section+"."+name)
		if err != nil {
			return config.Style{}, err
		}
		switch name {
		case "color", "linestyle":
			var s string
			if err := gocty.FromCtyValue(v, &s); err != nil {
				return config.Style{}, config.Errorf(section, "%s must be a string: %s", name, err)
			}
			if name == "color" {
				style.Color = &s
			} else {
				style.LineStyle = &s
			}
		case "linewidth", "markersize":
			var f float64
			if err := gocty.FromCtyValue(v, &f); err != nil {
				return config.Style{}, config.Errorf(section, "%s must be a number: %s", name, err)
			}
			if name == "linewidth" {
				style.LineWidth = &f
			} else {
				style.MarkerSize = &f
			}
		case "visible":
			var b bool
			if err := gocty.FromCtyValue(v, &b); err != nil {
				return config.Style{}, config.Errorf(section, "visible must be a bool: %s", err)
			}
			style.Visible = &b
		}
	}
	return style, nil
}

// --- low-level value helpers ---

func evalAttr(attr *hcl.Attribute, section string) (cty.Value, error) {
	v, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, config.Errorf(section, "%s", diags.Error())
	}
	return v, nil
}

func stringValue(attr *hcl.Attribute, section string) (string, error) {
	v, err := evalAttr(attr, section)
	if err != nil {
		return "", err
	}
	var s string
	if err := gocty.FromCtyValue(v, &s); err != nil {
		return "", config.Errorf(section, "must be a string: %s", err)
	}
	return s, nil
}

func stringAttr(content *hcl.BodyContent, name, section string) (string, error) {
	attr, ok := content.Attributes[name]
	if !ok {
		return "", config.Errorf(section, "missing required attribute %q", name)
	}
	return stringValue(attr, section+"."+name)
}

func decodeStringList(v cty.Value) ([]string, error) {
	if v.IsNull() || !v.CanIterateElements() {
		return nil, errNotAList
	}
	var out []string
	for it := v.ElementIterator(); it.Next(); {
		_, el := it.Element()
		var s string
		if err := gocty.FromCtyValue(el, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeStringOrList(v cty.Value) ([]string, error) {
	if !v.IsNull() && v.Type() == cty.String {
		return []string{v.AsString()}, nil
	}
	return decodeStringList(v)
}

// decodeGrid accepts either a single row of figure names or a rectangular
// matrix of rows. A null cell stands for a blank grid cell.
func decodeGrid(v cty.Value) ([][]string, error) {
	if v.IsNull() || !v.CanIterateElements() {
		return nil, errNotAList
	}
	var elems []cty.Value
	for it := v.ElementIterator(); it.Next(); {
		_, el := it.Element()
		elems = append(elems, el)
	}
	nested := false
	for _, el := range elems {
		if !el.IsNull() && (el.Type().IsTupleType() || el.Type().IsListType()) {
			nested = true
			break
		}
	}
	if !nested {
		row, err := decodeGridRow(elems)
		if err != nil {
			return nil, err
		}
		return [][]string{row}, nil
	}
	var grid [][]string
	for _, el := range elems {
		if el.IsNull() || !(el.Type().IsTupleType() || el.Type().IsListType()) {
			return nil, errRaggedGrid
		}
		var cells []cty.Value
		for it := el.ElementIterator(); it.Next(); {
			_, cell := it.Element()
			cells = append(cells, cell)
		}
		row, err := decodeGridRow(cells)
		if err != nil {
			return nil, err
		}
		grid = append(grid, row)
	}
	return grid, nil
}

func decodeGridRow(cells []cty.Value) ([]string, error) {
	row := make([]string, 0, len(cells))
	for _, cell := range cells {
		if cell.IsNull() {
			row = append(row, "")
			continue
		}
		if cell.Type() != cty.String {
			return nil, errBadGridCell
		}
		row = append(row, cell.AsString())
	}
	return row, nil
}

// decodeFigSize accepts a single number (square figure) or a pair.
func decodeFigSize(v cty.Value) ([2]float64, error) {
	var size [2]float64
	if !v.IsNull() && v.Type() == cty.Number {
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return size, err
		}
		return [2]float64{f, f}, nil
	}
	if v.IsNull() || !v.CanIterateElements() {
		return size, errBadFigSize
	}
	i := 0
	for it := v.ElementIterator(); it.Next(); i++ {
		if i >= 2 {
			return size, errBadFigSize
		}
		_, el := it.Element()
		var f float64
		if err := gocty.FromCtyValue(el, &f); err != nil {
			return size, err
		}
		size[i] = f
	}
	if i != 2 {
		return size, errBadFigSize
	}
	return size, nil
}
