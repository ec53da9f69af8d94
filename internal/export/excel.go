package export

import (
	"encoding/base64"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/AbbyGrylls/impetus9-backend/internal/model"
)

const sheetName = "Registrations"

// externalRollMarker replaces the roll value for EXTERNAL captains; the raw
// roll is never rendered for them.
const externalRollMarker = "EXTERNAL"

// emptySlotPlaceholder fills member columns beyond a team's own member count.
const emptySlotPlaceholder = "-"

var fixedHeaders = []string{
	"Team Name",
	"Captain Name",
	"Captain Phone",
	"Captain Roll",
	"Participant Type",
	"Registered At",
}

// MaxTeamMembers returns the largest member count across the registrations,
// 0 when there are none.
func MaxTeamMembers(regs []model.Registration) int {
	max := 0
	for _, reg := range regs {
		if len(reg.Members) > max {
			max = len(reg.Members)
		}
	}
	return max
}

// BuildWorkbook renders the registrations into an xlsx workbook: one bold
// header row with the fixed columns plus three columns per member slot up to
// the largest team present, then one row per registration in the given order.
func BuildWorkbook(regs []model.Registration) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name worksheet: %w", err)
	}

	maxMembers := MaxTeamMembers(regs)
	headers := make([]string, 0, len(fixedHeaders)+3*maxMembers)
	headers = append(headers, fixedHeaders...)
	for i := 1; i <= maxMembers; i++ {
		headers = append(headers,
			fmt.Sprintf("Member %d Name", i),
			fmt.Sprintf("Member %d Roll", i),
			fmt.Sprintf("Member %d Phone", i),
		)
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	lastHeaderCell, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to compute header range: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", lastHeaderCell, boldStyle); err != nil {
		return nil, fmt.Errorf("failed to apply header style: %w", err)
	}

	for i, reg := range regs {
		values := registrationRow(reg, maxMembers)
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell for row %d: %w", i+2, err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write cell for row %d: %w", i+2, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// registrationRow flattens one registration into cell values, padding member
// slots beyond the team's size with the placeholder marker.
func registrationRow(reg model.Registration, maxMembers int) []string {
	roll := reg.CapRoll
	if reg.ParticipantType != model.ParticipantTypeInternal {
		roll = externalRollMarker
	}

	values := make([]string, 0, len(fixedHeaders)+3*maxMembers)
	values = append(values,
		reg.TeamName,
		reg.CapName,
		reg.CapPhone,
		roll,
		string(reg.ParticipantType),
		reg.CreatedAt.Format("2006-01-02 15:04:05"),
	)
	for i := 0; i < maxMembers; i++ {
		if i < len(reg.Members) {
			m := reg.Members[i]
			values = append(values, m.Name, m.Roll, m.Phone)
		} else {
			values = append(values, emptySlotPlaceholder, emptySlotPlaceholder, emptySlotPlaceholder)
		}
	}
	return values
}

// EncodeBase64 returns the standard base64 encoding of the workbook bytes, as
// carried in the JSON response.
func EncodeBase64(workbook []byte) string {
	return base64.StdEncoding.EncodeToString(workbook)
}
