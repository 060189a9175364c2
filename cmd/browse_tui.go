// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/tkprog/pkg/channel"
)

//////////////////////////////////////////////////////////////
// Slot Items
//////////////////////////////////////////////////////////////

// slotItem is one channel slot shown in the browser list.
type slotItem struct {
	slot      int
	spec      channel.Spec
	record    channel.Record
	decodeErr error
	findings  []channel.ValidationError
}

// Implement list.Item interface
func (s slotItem) Title() string {
	if s.decodeErr != nil {
		return fmt.Sprintf("%2d  (undecodable)", s.slot)
	}
	if s.spec.IsEmpty() {
		return fmt.Sprintf("%2d  (empty)", s.slot)
	}
	return fmt.Sprintf("%2d  %s MHz", s.slot, channel.FormatFrequency(s.spec.RxFreq))
}

func (s slotItem) Description() string {
	switch {
	case s.decodeErr != nil:
		return "decode error"
	case s.spec.IsEmpty():
		return ""
	}
	desc := fmt.Sprintf("%s %s", s.spec.Power, s.spec.Width)
	if s.spec.Scan {
		desc += " scan"
	}
	if len(s.findings) > 0 {
		desc += fmt.Sprintf(" (%d issue(s))", len(s.findings))
	}
	return desc
}

func (s slotItem) FilterValue() string { return fmt.Sprintf("%d", s.slot) }

// buildSlotItems decodes each record on its own so one bad slot does not
// hide the others.
func buildSlotItems(p channel.Profile, img channel.Image) []slotItem {
	items := make([]slotItem, 0, channel.SlotCount)
	var table channel.Table
	for i, rec := range img {
		spec, err := p.DecodeRecord(rec)
		items = append(items, slotItem{slot: i + 1, spec: spec, record: rec, decodeErr: err})
		if err == nil {
			table[i] = spec
		}
	}
	for _, f := range p.ValidateTable(table) {
		if f.Slot >= 1 && f.Slot <= len(items) {
			items[f.Slot-1].findings = append(items[f.Slot-1].findings, f)
		}
	}
	return items
}

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

type browseModel struct {
	source   string
	profile  channel.Profile
	items    []slotItem
	slotList list.Model
	showHex  bool
	width    int
	height   int
	quitting bool
}

func initialBrowseModel(source string, p channel.Profile, img channel.Image) browseModel {
	items := buildSlotItems(p, img)

	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = it
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	slotList := list.New(listItems, delegate, 30, 20)
	slotList.Title = "Slots"
	slotList.SetShowStatusBar(false)
	slotList.SetShowHelp(false)
	slotList.SetFilteringEnabled(false)

	return browseModel{
		source:   source,
		profile:  p,
		items:    items,
		slotList: slotList,
		width:    80,
		height:   24,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "x":
			m.showHex = !m.showHex
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := m.height - 4
		if listHeight < 5 {
			listHeight = 5
		}
		m.slotList.SetSize(30, listHeight)
	}

	var cmd tea.Cmd
	m.slotList, cmd = m.slotList.Update(msg)
	return m, cmd
}

func (m browseModel) selected() (slotItem, bool) {
	it, ok := m.slotList.SelectedItem().(slotItem)
	return it, ok
}

func (m browseModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("TKPROG - CHANNEL BROWSER"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Profile: %s | ↑/↓ select, x hex, q quit", m.source, m.profile)))
	s.WriteString("\n\n")

	detail := "(no slot selected)"
	if it, ok := m.selected(); ok {
		detail = renderSlotDetail(it, m.showHex)
	}
	detailWidth := m.width - 36
	if detailWidth < 30 {
		detailWidth = 30
	}

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.slotList.View(),
		"  ",
		boxStyle.Width(detailWidth).Render(detail),
	))
	s.WriteString("\n")
	return s.String()
}

// renderSlotDetail formats the detail pane for one slot.
func renderSlotDetail(it slotItem, showHex bool) string {
	var d strings.Builder
	d.WriteString(labelStyle.Render(fmt.Sprintf("Slot %d", it.slot)))
	d.WriteString("\n\n")

	switch {
	case it.decodeErr != nil:
		d.WriteString(errorStyle.Render("✗ " + it.decodeErr.Error()))
		d.WriteString("\n")
	case it.spec.IsEmpty():
		d.WriteString(headerStyle.Render("empty"))
		d.WriteString("\n")
	default:
		row := func(label, value string) {
			d.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render(fmt.Sprintf("%-9s", label)), valueStyle.Render(value)))
		}
		tx := channel.FormatFrequency(it.spec.TxFreq)
		if it.spec.ReceiveOnly() {
			tx = "receive only"
		}
		row("RX:", channel.FormatFrequency(it.spec.RxFreq)+" MHz")
		row("RX tone:", channel.FormatTone(it.spec.RxTone))
		row("TX:", tx)
		row("TX tone:", channel.FormatTone(it.spec.TxTone))
		row("Power:", it.spec.Power.String())
		row("Width:", it.spec.Width.String())
		row("Scan:", fmt.Sprintf("%t", it.spec.Scan))
	}

	for _, f := range it.findings {
		style := warningStyle
		if f.Severity == channel.SeverityError {
			style = errorStyle
		}
		d.WriteString(style.Render("! " + f.Message))
		d.WriteString("\n")
	}

	if showHex {
		d.WriteString("\n")
		d.WriteString(headerStyle.Render(channel.FormatRecord(it.record)))
		d.WriteString("\n")
	}
	return d.String()
}
