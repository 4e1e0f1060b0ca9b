package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)
)

const (
	viewMain   = "main"
	viewMenu   = "menu"
	viewCost   = "cost"
	viewSync   = "sync"
	viewUpload = "upload"
)

// Model defines the application state
type Model struct {
	mainMenu  list.Model
	menuTable table.Model
	costTable table.Model
	report    *MenuReport
	cost      *FoodCostReport
	outcomes  []Outcome
	uploadIn  textinput.Model
	spinner   spinner.Model
	client    *ApiClient

	loading     bool
	currentView string
	message     string
	error       string
}

// item represents a list item
type item struct {
	title, desc string
}

func (i item) FilterValue() string { return i.title }
func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }

func initialModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	items := []list.Item{
		item{title: "Menu Engineering", desc: "Stars, anchors, drifts and rocks with advice"},
		item{title: "Food Cost", desc: "Ingredient cost and margin per dish"},
		item{title: "Sync POS", desc: "Pull last week's sales from every connected POS"},
		item{title: "Upload Export", desc: "Reconcile a CSV or XLSX sales export"},
		item{title: "Exit", desc: "Exit the application"},
	}
	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "menuperf"

	menuTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "Dish", Width: 24},
			{Title: "Category", Width: 9},
			{Title: "Orders", Width: 7},
			{Title: "Margin %", Width: 9},
			{Title: "Profit", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	costTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "Dish", Width: 24},
			{Title: "Price", Width: 8},
			{Title: "Cost", Width: 8},
			{Title: "Margin %", Width: 9},
			{Title: "Status", Width: 9},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	ti := textinput.New()
	ti.Placeholder = "path/to/sales.csv"
	ti.CharLimit = 256
	ti.Width = 48

	return Model{
		mainMenu:    mainMenu,
		menuTable:   menuTable,
		costTable:   costTable,
		uploadIn:    ti,
		spinner:     s,
		client:      NewApiClient(),
		currentView: viewMain,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.mainMenu.SetSize(msg.Width-h, msg.Height-v)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.currentView != viewUpload {
				return m, tea.Quit
			}
		case "esc":
			m.currentView, m.error, m.message = viewMain, "", ""
			m.uploadIn.Blur()
			return m, nil
		case "enter":
			switch m.currentView {
			case viewMain:
				return m.selectMenu()
			case viewUpload:
				path := strings.TrimSpace(m.uploadIn.Value())
				if path == "" {
					return m, nil
				}
				m.loading = true
				return m, uploadExport(m.client, path)
			}
		}
	case menuReportMsg:
		m.loading = false
		m.report = msg.report
		m.menuTable.SetRows(menuRows(msg.report))
		return m, nil
	case foodCostMsg:
		m.loading = false
		m.cost = msg.report
		m.costTable.SetRows(costRows(msg.report))
		return m, nil
	case outcomesMsg:
		m.loading = false
		m.outcomes = msg.outcomes
		return m, nil
	case confirmMsg:
		m.loading = false
		m.error, m.message = "", msg.message
		return m, nil
	case errorMsg:
		m.loading = false
		m.error = msg.err
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.currentView {
	case viewMain:
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case viewMenu:
		m.menuTable, cmd = m.menuTable.Update(msg)
	case viewCost:
		m.costTable, cmd = m.costTable.Update(msg)
	case viewUpload:
		m.uploadIn, cmd = m.uploadIn.Update(msg)
	}
	return m, cmd
}

func (m Model) selectMenu() (tea.Model, tea.Cmd) {
	selected, ok := m.mainMenu.SelectedItem().(item)
	if !ok {
		return m, nil
	}
	m.error, m.message = "", ""
	switch selected.title {
	case "Exit":
		return m, tea.Quit
	case "Menu Engineering":
		m.currentView, m.loading = viewMenu, true
		return m, fetchMenuReport(m.client)
	case "Food Cost":
		m.currentView, m.loading = viewCost, true
		return m, fetchFoodCost(m.client)
	case "Sync POS":
		m.currentView, m.loading = viewSync, true
		return m, syncAll(m.client)
	case "Upload Export":
		m.currentView = viewUpload
		m.uploadIn.SetValue("")
		m.uploadIn.Focus()
	}
	return m, nil
}

// View renders the UI
func (m Model) View() string {
	var b strings.Builder
	switch m.currentView {
	case viewMain:
		return docStyle.Render(m.mainMenu.View())
	case viewMenu:
		b.WriteString(titleStyle.Render("Menu Engineering") + "\n\n")
		if m.report != nil {
			b.WriteString(fmt.Sprintf("Median margin %.1f%%  Median orders %d\n", m.report.MedianMargin, m.report.MedianOrders))
			b.WriteString(categorySummary(m.report.CategoryCounts) + "\n\n")
			b.WriteString(m.menuTable.View() + "\n\n")
			if i := m.menuTable.Cursor(); i >= 0 && i < len(m.report.Items) {
				b.WriteString(infoStyle.Render(m.report.Items[i].MenuItemName) + "\n")
				b.WriteString(m.report.Items[i].Recommendation + "\n")
			}
		}
	case viewCost:
		b.WriteString(titleStyle.Render("Food Cost") + "\n\n")
		if m.cost != nil {
			b.WriteString(fmt.Sprintf("Average margin %.1f%%\n\n", m.cost.AverageMargin))
			b.WriteString(m.costTable.View() + "\n")
		}
	case viewSync:
		b.WriteString(titleStyle.Render("POS Sync") + "\n\n")
		if !m.loading && len(m.outcomes) == 0 && m.error == "" {
			b.WriteString("No active integrations.\n")
		}
		for _, o := range m.outcomes {
			if o.Result != nil {
				b.WriteString(successStyle.Render(o.Provider) + fmt.Sprintf(" %d lines, %d items matched\n", o.Result.Lines, o.Result.MatchedItems))
			} else {
				b.WriteString(errorStyle.Render(o.Provider) + " " + o.Status + ": " + o.Error + "\n")
			}
		}
	case viewUpload:
		b.WriteString(titleStyle.Render("Upload Export") + "\n\n")
		b.WriteString(m.uploadIn.View() + "\n")
		if m.message != "" {
			b.WriteString("\n" + successStyle.Render(m.message) + "\n")
		}
	default:
		return "Loading..."
	}

	if m.loading {
		b.WriteString("\n" + m.spinner.View() + " Loading...\n")
	}
	if m.error != "" {
		b.WriteString("\n" + errorStyle.Render(m.error) + "\n")
	}
	b.WriteString("\nPress 'esc' to return to the main menu")
	return docStyle.Render(b.String())
}

type menuReportMsg struct{ report *MenuReport }

type foodCostMsg struct{ report *FoodCostReport }

type outcomesMsg struct{ outcomes []Outcome }

type errorMsg struct{ err string }

type confirmMsg struct{ message string }

func fetchMenuReport(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		report, err := client.GetMenuEngineering()
		if err != nil {
			return errorMsg{err: err.Error()}
		}
		return menuReportMsg{report: report}
	}
}

func fetchFoodCost(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		report, err := client.GetFoodCost()
		if err != nil {
			return errorMsg{err: err.Error()}
		}
		return foodCostMsg{report: report}
	}
}

func syncAll(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		outcomes, err := client.SyncAll()
		if err != nil {
			return errorMsg{err: err.Error()}
		}
		return outcomesMsg{outcomes: outcomes}
	}
}

func uploadExport(client *ApiClient, path string) tea.Cmd {
	return func() tea.Msg {
		res, err := client.UploadExport(path)
		if err != nil {
			return errorMsg{err: err.Error()}
		}
		return confirmMsg{message: fmt.Sprintf("%d lines, %d items matched", res.Lines, res.MatchedItems)}
	}
}

func menuRows(r *MenuReport) []table.Row {
	rows := make([]table.Row, 0, len(r.Items))
	for _, it := range r.Items {
		rows = append(rows, table.Row{
			it.MenuItemName,
			it.Category,
			fmt.Sprint(it.WeeklyOrders),
			fmt.Sprintf("%.1f", it.MarginPercent),
			fmt.Sprintf("%.2f", it.WeeklyProfit),
		})
	}
	return rows
}

func costRows(r *FoodCostReport) []table.Row {
	rows := make([]table.Row, 0, len(r.Items))
	for _, it := range r.Items {
		rows = append(rows, table.Row{
			it.MenuItemName,
			fmt.Sprintf("%.2f", it.SellingPrice),
			fmt.Sprintf("%.2f", it.IngredientCost),
			fmt.Sprintf("%.1f", it.MarginPercent),
			it.Status,
		})
	}
	return rows
}

func categorySummary(counts map[string]int) string {
	parts := make([]string, 0, 4)
	for _, c := range []string{"star", "anchor", "drift", "rock"} {
		parts = append(parts, fmt.Sprintf("%s %d", c, counts[c]))
	}
	return strings.Join(parts, "  ")
}

func main() {
	if os.Getenv("MENUPERF_TOKEN") == "" {
		fmt.Println("MENUPERF_TOKEN is not set; requests will be rejected")
	}
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
