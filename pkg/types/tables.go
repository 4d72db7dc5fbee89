package types

import "strings"

// Table identifies one of the enumerated grid preference tables.
type Table string

const (
	TableClients   Table = "client_view_preferences"
	TableProspects Table = "prospect_view_preferences"
	TablePartners  Table = "partner_view_preferences"
	TableStaff     Table = "staff_view_preferences"
	TableSalesReps Table = "sales_rep_view_preferences"
)

// Tables lists every supported table in display order.
func Tables() []Table {
	return []Table{TableClients, TableProspects, TablePartners, TableStaff, TableSalesReps}
}

// ParseTable resolves a table identifier, accepting the short entity name
// ("prospect") as well as the full table name.
func ParseTable(raw string) (Table, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	for _, table := range Tables() {
		if key == string(table) || key == table.Entity() {
			return table, nil
		}
	}
	return "", ErrUnknownTable
}

// Valid reports whether the table is part of the enumerated set.
func (t Table) Valid() bool {
	_, err := ParseTable(string(t))
	return err == nil && t != ""
}

// Entity returns the short entity name, e.g. "sales_rep".
func (t Table) Entity() string {
	return strings.TrimSuffix(string(t), "_view_preferences")
}

// TableConfig carries the per-table defaults used when no record exists.
type TableConfig struct {
	Table                Table
	DefaultColumnOrder   []string
	DefaultSortColumn    string
	DefaultSortDirection SortDirection
}

// Defaults returns the configuration-derived preferences.
func (c TableConfig) Defaults() ViewPreferences {
	sortColumn := c.DefaultSortColumn
	if sortColumn == "" {
		sortColumn = DefaultSortColumn
	}
	direction := c.DefaultSortDirection
	if direction == "" {
		direction = SortAsc
	}
	return ViewPreferences{
		ColumnOrder:   cloneStrings(c.DefaultColumnOrder),
		HiddenColumns: []string{},
		ColumnWidths:  map[string]float64{},
		SortColumn:    sortColumn,
		SortDirection: direction,
		ActiveFilters: map[string]string{},
		RowsPerPage:   DefaultRowsPerPage,
		SavedViews:    []SavedView{},
	}
}

// DefaultTableConfigs returns the built-in configuration for every table.
func DefaultTableConfigs() map[Table]TableConfig {
	return map[Table]TableConfig{
		TableClients: {
			Table: TableClients,
			DefaultColumnOrder: []string{
				"name", "email", "phone", "status", "payment_type", "last_activity",
				"last_contact", "next_meeting", "last_payment_date", "next_payment_due_date",
				"payment_amount", "sales_rep", "partner_name", "tags",
			},
			DefaultSortColumn:    "name",
			DefaultSortDirection: SortAsc,
		},
		TableProspects: {
			Table: TableProspects,
			DefaultColumnOrder: []string{
				"name", "email", "phone", "company", "status", "interested_plan",
				"estimated_value", "est_closing_date", "last_activity", "last_contact",
				"last_outreach", "last_meeting", "sales_rep",
			},
			DefaultSortColumn:    "name",
			DefaultSortDirection: SortAsc,
		},
		TablePartners: {
			Table: TablePartners,
			DefaultColumnOrder: []string{
				"name", "email", "company_name", "status", "commission_rate",
				"closed_won_deals", "last_referral_date", "last_activity_date",
				"agreement_signed",
			},
			DefaultSortColumn:    "name",
			DefaultSortDirection: SortAsc,
		},
		TableStaff: {
			Table: TableStaff,
			DefaultColumnOrder: []string{
				"name", "email", "title", "department", "employment_type", "status",
				"start_date", "hours_per_week",
			},
			DefaultSortColumn:    "name",
			DefaultSortDirection: SortAsc,
		},
		TableSalesReps: {
			Table: TableSalesReps,
			DefaultColumnOrder: []string{
				"name", "email", "phone", "title", "status", "commission_rate",
				"total_clients", "monthly_revenue", "hire_date",
			},
			DefaultSortColumn:    "name",
			DefaultSortDirection: SortAsc,
		},
	}
}
