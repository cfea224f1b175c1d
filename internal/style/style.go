// Package style maps a door snapshot to a renderer-agnostic tile view-model:
// color kinds, icon kinds, text and tooltip. It never influences
// reconciliation; any rendering backend can consume the result.
package style

import (
	"fmt"
	"strings"

	"cabinet-status-backend/internal/model"
)

// IconKind names the pictogram shown on a tile.
type IconKind string

const (
	IconNone  IconKind = ""
	IconShoe  IconKind = "shoe"
	IconShirt IconKind = "shirt"
	IconCycle IconKind = "cycle"
	IconPin   IconKind = "pin"
)

// EmptyText is the label shown on unoccupied slots.
const EmptyText = "空"

// TileStyle is the visual state of one tile. Background holds a vertical
// gradient pair (top, bottom).
type TileStyle struct {
	Background [2]string `json:"background"`
	Border     string    `json:"border"`
	Icon       IconKind  `json:"icon,omitempty"`
	Overlay    IconKind  `json:"overlay,omitempty"`
	// Text is drawn in the tile body, OverlayText at the bottom edge
	// (the assigned user of a fixed slot), Label at the top edge.
	Text        string `json:"text,omitempty"`
	OverlayText string `json:"overlayText,omitempty"`
	Label       string `json:"label,omitempty"`
	Tooltip     string `json:"tooltip,omitempty"`
}

// Color pairs match the original control-room panels.
var (
	lockedBG   = [2]string{"#F5F5F5", "#CFCFCF"}
	cycleBG    = [2]string{"#CFE7DB", "#8FC8AB"}
	fixedBG    = [2]string{"#FFF8D6", "#F0E096"}
	occupiedBG = [2]string{"#BFF1C0", "#7DDC82"}
	emptyBG    = [2]string{"#FFF1BF", "#F5D46A"}

	cupFixedBG = [2]string{"#FFF4B3", "#FFF4B3"}
	cupCycleBG = [2]string{"#CFE7DB", "#CFE7DB"}
)

const (
	lockedBorder   = "#8a8a8a"
	cycleBorder    = "#5F9C80"
	fixedBorder    = "#d6a800"
	occupiedBorder = "#3b9b3e"
	cupBorder      = "#999999"
)

// ResolveDispenser computes the tile style for a shoe-dispenser slot.
// Priority: locked > fixed/cycle known > occupancy fallback.
func ResolveDispenser(d *model.DoorStatus) TileStyle {
	s := TileStyle{
		Label:   d.DoorName,
		Tooltip: Tooltip(d),
	}

	occupied := d.Occupied()

	switch {
	case d.Locked():
		s.Background = lockedBG
		s.Border = lockedBorder
	case d.IsCycle != nil && *d.IsCycle:
		s.Background = cycleBG
		s.Border = cycleBorder
		s.Overlay = IconCycle
		if occupied {
			s.Icon = IconShoe
		} else {
			s.Text = EmptyText
		}
	case d.IsCycle != nil: // known, fixed
		s.Background = fixedBG
		s.Border = fixedBorder
		s.Overlay = IconPin
		s.OverlayText = d.UserName
		if occupied {
			s.Icon = IconShoe
		} else {
			s.Text = EmptyText
		}
	case occupied || d.UserName != "":
		s.Background = occupiedBG
		s.Border = occupiedBorder
		s.Icon = IconShoe
	default:
		s.Background = emptyBG
		s.Border = fixedBorder
		s.Text = EmptyText
	}
	return s
}

// ResolveCupboard computes the tile style for a changing-cupboard slot.
// Wardrobe tabs use the shirt icon, shoe-issue cupboards the shoe icon;
// both share the fixed/cycle coloring from the Ending flag.
func ResolveCupboard(d *model.DoorStatus, wardrobe bool) TileStyle {
	s := TileStyle{
		Label:   fmt.Sprintf("%d", d.DoorNo),
		Border:  cupBorder,
		Tooltip: Tooltip(d),
	}

	if d.Fixed() {
		s.Background = cupFixedBG
		s.Overlay = IconPin
		s.OverlayText = d.UserName
	} else {
		s.Background = cupCycleBG
		s.Overlay = IconCycle
	}

	occupied := d.UserID != ""
	if occupied {
		if wardrobe {
			s.Icon = IconShirt
			s.OverlayText = d.UserName
		} else {
			s.Icon = IconShoe
		}
	} else {
		s.Text = EmptyText
	}
	return s
}

// Tooltip aggregates the door details for hover display. Display-only.
func Tooltip(d *model.DoorStatus) string {
	parts := []string{fmt.Sprintf("门号: %d", d.DoorNo)}
	if d.DeviceName != "" {
		parts = append(parts, fmt.Sprintf("设备: %s", d.DeviceName))
	}
	if d.CabinetKey != "" {
		parts = append(parts, fmt.Sprintf("柜体: %s", d.CabinetKey))
	}
	if d.LockName != "" {
		parts = append(parts, fmt.Sprintf("锁状态: %s", d.LockName))
	}
	if d.UserName != "" {
		parts = append(parts, fmt.Sprintf("占用人: %s", d.UserName))
	}
	if d.SizeName != "" || d.StyleName != "" {
		parts = append(parts, fmt.Sprintf("鞋码: %s", orDash(d.SizeName)))
		parts = append(parts, fmt.Sprintf("款式: %s", orDash(d.StyleName)))
	}
	return strings.Join(parts, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
