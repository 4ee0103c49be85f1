package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dailyschedule/internal/category"
	"github.com/sadopc/dailyschedule/internal/store"
)

type categoryForm int

const (
	formNewSub categoryForm = iota
	formEditSub
	formNewMain
)

// categoryRow is one line of the flattened main/sub tree.
type categoryRow struct {
	cat     store.Category
	mainKey string
}

type categoriesModel struct {
	svc    Services
	width  int
	height int

	tree   []category.Node
	rows   []categoryRow
	cursor int

	formActive bool
	form       *huh.Form
	formType   categoryForm
	editingID  string

	// Form field pointers (survive value copies)
	formName   *string
	formDesc   *string
	formColor  *string
	formIcon   *string
	formParent *string

	confirming    bool
	confirmTarget store.Category
}

func newCategoriesModel(svc Services) categoriesModel {
	name, desc, color, icon, parent := "", "", category.DefaultColor, category.DefaultIcon, ""
	return categoriesModel{
		svc:        svc,
		formName:   &name,
		formDesc:   &desc,
		formColor:  &color,
		formIcon:   &icon,
		formParent: &parent,
	}
}

func (c *categoriesModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

func (c categoriesModel) capturing() bool { return c.formActive || c.confirming }

type categoriesDataMsg struct {
	tree []category.Node
}

func (c categoriesModel) refresh() tea.Cmd {
	svc := c.svc
	return func() tea.Msg {
		tree, err := svc.Categories.Tree(context.Background())
		if err != nil {
			return failed("load categories", err)
		}
		return categoriesDataMsg{tree: tree}
	}
}

func flattenTree(tree []category.Node) []categoryRow {
	var rows []categoryRow
	for _, n := range tree {
		rows = append(rows, categoryRow{cat: n.Main, mainKey: n.Main.Key})
		for _, s := range n.Subs {
			rows = append(rows, categoryRow{cat: s, mainKey: n.Main.Key})
		}
	}
	return rows
}

func (c categoriesModel) selected() (categoryRow, bool) {
	if c.cursor < 0 || c.cursor >= len(c.rows) {
		return categoryRow{}, false
	}
	return c.rows[c.cursor], true
}

func (c categoriesModel) update(msg tea.Msg) (categoriesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesDataMsg:
		c.tree = msg.tree
		c.rows = flattenTree(msg.tree)
		if c.cursor >= len(c.rows) {
			c.cursor = max(0, len(c.rows)-1)
		}
		return c, nil

	case dataChangedMsg:
		return c, c.refresh()
	}

	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		if c.confirming {
			return c.updateConfirm(msg)
		}
		return c.updateList(msg)
	}
	return c, nil
}

func (c categoriesModel) updateList(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if c.cursor > 0 {
			c.cursor--
		}
	case key.Matches(msg, keys.Down):
		if c.cursor < len(c.rows)-1 {
			c.cursor++
		}
	case key.Matches(msg, keys.New):
		parent := ""
		if row, ok := c.selected(); ok {
			parent = row.mainKey
		}
		return c.showSubForm(formNewSub, store.Category{Color: category.DefaultColor, Icon: category.DefaultIcon}, parent)
	case key.Matches(msg, keys.NewMain):
		return c.showMainForm()
	case key.Matches(msg, keys.Edit):
		row, ok := c.selected()
		if !ok {
			return c, nil
		}
		if row.cat.IsMain() {
			return c, func() tea.Msg { return infoStatus("Main categories cannot be edited") }
		}
		return c.showSubForm(formEditSub, row.cat, row.cat.Parent())
	case key.Matches(msg, keys.Delete):
		row, ok := c.selected()
		if !ok {
			return c, nil
		}
		if row.cat.IsMain() {
			return c, func() tea.Msg { return infoStatus("Main categories cannot be deleted") }
		}
		if !confirmDeletes(c.svc) {
			return c, c.deleteCmd(row.cat)
		}
		c.confirming = true
		c.confirmTarget = row.cat
	}
	return c, nil
}

func (c categoriesModel) updateConfirm(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
	c.confirming = false
	if key.Matches(msg, keys.Confirm) {
		return c, c.deleteCmd(c.confirmTarget)
	}
	return c, nil
}

func (c categoriesModel) deleteCmd(cat store.Category) tea.Cmd {
	svc := c.svc
	return func() tea.Msg {
		if err := svc.Categories.DeleteSubCategory(context.Background(), cat.ID); err != nil {
			return failed("delete category", err)
		}
		return changed("Deleted %s", cat.Name)
	}
}

func (c categoriesModel) mainOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(c.tree))
	for _, n := range c.tree {
		opts = append(opts, huh.NewOption(category.Glyph(n.Main.Icon)+" "+n.Main.Name, n.Main.Key))
	}
	return opts
}

func colorOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(category.ColorOptions))
	for i, o := range category.ColorOptions {
		opts[i] = huh.NewOption(dot(o.Value)+" "+o.Label, o.Value)
	}
	return opts
}

func iconOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(category.IconOptions))
	for i, o := range category.IconOptions {
		opts[i] = huh.NewOption(o.Glyph+" "+o.Label, o.Value)
	}
	return opts
}

func requiredName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

func (c categoriesModel) showSubForm(kind categoryForm, cat store.Category, parent string) (categoriesModel, tea.Cmd) {
	*c.formName = cat.Name
	*c.formDesc = cat.Description
	*c.formColor = cat.Color
	*c.formIcon = cat.Icon
	*c.formParent = parent
	c.formType = kind
	c.editingID = cat.ID

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Main category").Options(c.mainOptions()...).Value(c.formParent),
			huh.NewInput().Title("Name").Value(c.formName).Validate(requiredName),
			huh.NewInput().Title("Description").Value(c.formDesc),
			huh.NewSelect[string]().Title("Color").Options(colorOptions()...).Value(c.formColor),
			huh.NewSelect[string]().Title("Icon").Options(iconOptions()...).Value(c.formIcon),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c categoriesModel) showMainForm() (categoriesModel, tea.Cmd) {
	*c.formName = ""
	*c.formDesc = ""
	*c.formColor = category.DefaultColor
	*c.formIcon = category.DefaultIcon
	c.formType = formNewMain
	c.editingID = ""

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(c.formName).Validate(requiredName),
			huh.NewInput().Title("Description").Value(c.formDesc),
			huh.NewSelect[string]().Title("Color").Options(colorOptions()...).Value(c.formColor),
			huh.NewSelect[string]().Title("Icon").Options(iconOptions()...).Value(c.formIcon),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c categoriesModel) updateForm(msg tea.Msg) (categoriesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		return c, c.saveCmd()
	}
	return c, cmd
}

func (c categoriesModel) saveCmd() tea.Cmd {
	svc := c.svc
	kind, id := c.formType, c.editingID
	in := category.Input{
		Name:        *c.formName,
		Description: *c.formDesc,
		Color:       *c.formColor,
		Icon:        *c.formIcon,
		ParentKey:   *c.formParent,
	}
	return func() tea.Msg {
		ctx := context.Background()
		switch kind {
		case formNewMain:
			cat, err := svc.Categories.CreateMainCategory(ctx, in)
			if err != nil {
				return failed("create category", err)
			}
			return changed("Created %s", cat.Name)
		case formEditSub:
			cat, err := svc.Categories.UpdateSubCategory(ctx, id, category.Patch{
				Name:        &in.Name,
				Description: &in.Description,
				Color:       &in.Color,
				Icon:        &in.Icon,
				ParentKey:   &in.ParentKey,
			})
			if err != nil {
				return failed("update category", err)
			}
			return changed("Updated %s", cat.Name)
		}
		cat, err := svc.Categories.CreateSubCategory(ctx, in)
		if err != nil {
			return failed("create category", err)
		}
		return changed("Created %s", cat.Name)
	}
}

func (c categoriesModel) view() string {
	w := c.width - 4

	if c.formActive && c.form != nil {
		title := "New Sub-category"
		switch c.formType {
		case formEditSub:
			title = "Edit Sub-category"
		case formNewMain:
			title = "New Main Category"
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", c.form.View()),
		)
	}

	if c.confirming {
		content := lipgloss.JoinVertical(lipgloss.Left,
			errorStyle.Render(fmt.Sprintf("Delete %q?", c.confirmTarget.Name)),
			"",
			mutedStyle.Render("Tracked sessions are kept. y: delete  any other key: cancel"),
		)
		return dangerPanelStyle.Width(w).Render(content)
	}

	rows := []string{titleStyle.Render("Categories"), ""}
	if len(c.rows) == 0 {
		rows = append(rows, mutedStyle.Render("Loading..."))
	}
	for i, row := range c.rows {
		glyph := category.Glyph(row.cat.Icon)
		var line string
		if row.cat.IsMain() {
			line = fmt.Sprintf("%s %s %s", dot(row.cat.Color), glyph, row.cat.Name)
		} else {
			line = fmt.Sprintf("    └ %s %s", glyph, row.cat.Name)
			if row.cat.Description != "" {
				line += mutedStyle.Render("  " + row.cat.Description)
			}
		}
		rows = append(rows, cursorRow(i == c.cursor, line))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new sub  N: new main  e: edit  d: delete  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
