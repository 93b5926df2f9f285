package constants

// Keys under which the manually entered approval fields are written into every record.
const (
	FieldBillSource    = "Bill Source"
	FieldBillGivenBy   = "Bill Given By"
	FieldHODApproval   = "HOD Approval"
	FieldFinalApproval = "Final Approval"
)

// ManualFieldKeys lists the manual field keys in the order they are applied.
var ManualFieldKeys = []string{
	FieldBillSource,
	FieldBillGivenBy,
	FieldHODApproval,
	FieldFinalApproval,
}
