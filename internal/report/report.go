// Package report flattens a PlanningResult into display-ready rows and
// serializes them for download. The core stays agnostic to this format.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/eugenenazirov/stowage-planner/internal/stowage"
)

// Row is one assigned or unassigned cargo unit flattened for display.
type Row struct {
	ContainerLabel    string
	ContainerType     string
	ContainerIndex    int
	UnitID            string
	ItemID            string
	Description       string
	PackagingCode     string
	PackagingStatus   string
	Length            float64
	Width             float64
	Height            float64
	Weight            float64
	Volume            float64
	OOGFlag           bool
	OOGOverride       string
	OverLength        float64
	OverWidth         float64
	OverHeight        float64
	VolumeUtilization float64
	WeightUtilization float64
	Infeasible        bool
}

// BuildRows flattens the planning result, containers first (in opening
// order, units in assignment order) followed by infeasible units.
func BuildRows(result *stowage.PlanningResult) []Row {
	oogByItem := make(map[string]stowage.OOGResult, len(result.OOG))
	for _, oog := range result.OOG {
		oogByItem[oog.ItemID] = oog
	}

	rows := make([]Row, 0, len(result.Infeasible))
	for _, instance := range result.Containers {
		for _, unit := range instance.Units {
			row := unitRow(unit, oogByItem)
			row.ContainerLabel = instance.Label()
			row.ContainerType = instance.Type.Name
			row.ContainerIndex = instance.Index
			row.VolumeUtilization = instance.VolumeUtilization()
			row.WeightUtilization = instance.WeightUtilization()
			rows = append(rows, row)
		}
	}
	for _, unit := range result.Infeasible {
		row := unitRow(unit, oogByItem)
		row.Infeasible = true
		rows = append(rows, row)
	}
	return rows
}

func unitRow(unit stowage.CargoUnit, oogByItem map[string]stowage.OOGResult) Row {
	oog := oogByItem[unit.ItemID]
	return Row{
		UnitID:          unit.UnitID,
		ItemID:          unit.ItemID,
		Description:     unit.Item.Description,
		PackagingCode:   unit.Item.PackagingCode,
		PackagingStatus: string(unit.Item.PackagingStatus),
		Length:          unit.Item.Length,
		Width:           unit.Item.Width,
		Height:          unit.Item.Height,
		Weight:          unit.Item.Weight,
		Volume:          unit.Volume(),
		OOGFlag:         oog.Flagged(),
		OOGOverride:     string(oog.Override),
		OverLength:      oog.OverLength,
		OverWidth:       oog.OverWidth,
		OverHeight:      oog.OverHeight,
	}
}

var csvHeader = []string{
	"container", "container_type", "container_index",
	"unit_id", "item_id", "description", "packaging_code", "packaging_status",
	"length_cm", "width_cm", "height_cm", "weight_kg", "volume_m3",
	"oog_flag", "oog_override", "over_length_cm", "over_width_cm", "over_height_cm",
	"volume_utilization", "weight_utilization", "infeasible",
}

// WriteCSV renders the rows as CSV, header included.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.ContainerLabel,
			row.ContainerType,
			strconv.Itoa(row.ContainerIndex),
			row.UnitID,
			row.ItemID,
			row.Description,
			row.PackagingCode,
			row.PackagingStatus,
			formatFloat(row.Length),
			formatFloat(row.Width),
			formatFloat(row.Height),
			formatFloat(row.Weight),
			formatFloat(row.Volume),
			strconv.FormatBool(row.OOGFlag),
			row.OOGOverride,
			formatFloat(row.OverLength),
			formatFloat(row.OverWidth),
			formatFloat(row.OverHeight),
			formatFloat(row.VolumeUtilization),
			formatFloat(row.WeightUtilization),
			strconv.FormatBool(row.Infeasible),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", row.UnitID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
