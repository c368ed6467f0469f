// Package navigation builds the sidebar menu of the console from the
// permission model.
package navigation

import (
	"strings"

	"github.com/atlas-ops/atlas/internal/domain"
)

// Section titles.
const (
	SectionGeneral  = "General"
	SectionSpecific = "Specific Pages"
	SectionAdmin    = "Admin Settings"
)

// Item represents a single menu link.
type Item struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// Section is a titled group of items.
type Section struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Menu is the sidebar of one user at one asset.
type Menu struct {
	Sections []Section `json:"sections"`
}

// Section returns the section with the given title.
func (m Menu) Section(title string) (Section, bool) {
	for _, s := range m.Sections {
		if s.Title == title {
			return s, true
		}
	}

	return Section{}, false
}

func general() Section {
	return Section{
		Title: SectionGeneral,
		Items: []Item{
			{Key: "dashboard", Label: "Dashboard", Icon: "home"},
			{Key: "action-center", Label: "Projects and Tasks", Icon: "list-bullet"},
			{Key: "university", Label: "My Learning", Icon: "academic-cap"},
			{Key: "handbook", Label: "Employee Handbook", Icon: "book-open"},
		},
	}
}

func admin() Section {
	return Section{
		Title: SectionAdmin,
		Items: []Item{
			{Key: "user-management", Label: "User Management", Icon: "users"},
			{Key: "asset-management", Label: "Asset Management", Icon: "building-office"},
			{Key: "access-control", Label: "Access Control", Icon: "wrench-screwdriver"},
			{Key: "templates-builder", Label: "Templates Builder", Icon: "clipboard-document-list"},
			{Key: "curriculum-studio", Label: "Curriculum Studio", Icon: "academic-cap"},
		},
	}
}

// Build returns the menu of a user holding positionID at an asset of type
// config. config may be nil when no asset is selected. Pages the position's
// matrix grants are listed in page order; dashboards are left out because
// the general section links them.
func Build(config *domain.AssetTypeConfig, positionID string, isAdmin bool) Menu {
	menu := Menu{Sections: []Section{general()}}

	if config != nil && positionID != "" {
		specific := Section{Title: SectionSpecific}

		for _, page := range config.Pages {
			if !config.PermissionMatrix.Allows(positionID, page.ID) {
				continue
			}

			if strings.Contains(strings.ToLower(page.Name), "dashboard") {
				continue
			}

			specific.Items = append(specific.Items, Item{Key: page.ID, Label: page.Name, Icon: page.Icon})
		}

		if len(specific.Items) > 0 {
			menu.Sections = append(menu.Sections, specific)
		}
	}

	if isAdmin {
		menu.Sections = append(menu.Sections, admin())
	}

	return menu
}
