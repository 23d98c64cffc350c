// Package report turns activity records into the exported spreadsheet.
package report

import "github.com/sistemasreportes/reportes-backend/internal/domain"

// Column maps a record field to its header label in the spreadsheet.
type Column struct {
	Field string
	Label string
}

// Columns is the fixed export layout; output columns always follow this order.
var Columns = []Column{
	{Field: domain.FieldTimestamp, Label: "Fecha/Hora"},
	{Field: domain.FieldRateCode, Label: "Código"},
	{Field: domain.FieldDescription, Label: "Descripción"},
	{Field: domain.FieldUnitPrice, Label: "Precio Unitario"},
	{Field: domain.FieldAssigned, Label: "Cant. Asignada (Meta)"},
	{Field: domain.FieldCompleted, Label: "Cant. Ejecutada"},
	{Field: domain.FieldProjectedValue, Label: "Valor Proyectado (S/.)"},
	{Field: domain.FieldRealizedValue, Label: "Valor Realizado (S/.)"},
	{Field: domain.FieldMainTechName, Label: "Técnico Principal"},
	{Field: domain.FieldPartnerTechName, Label: "Técnico Auxiliar"},
}
