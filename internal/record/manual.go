package record

import (
	"github.com/joseph-ayodele/bill-scanner/constants"
	"github.com/joseph-ayodele/bill-scanner/internal/common"
)

// ManualFields are the approval details typed in by the operator for each bill.
type ManualFields struct {
	BillSource    string `json:"bill_source"`
	BillGivenBy   string `json:"bill_given_by"`
	HODApproval   string `json:"hod_approval"`
	FinalApproval string `json:"final_approval"`
}

// Validate requires every field to be non-blank. Values are not altered.
func (m ManualFields) Validate() error {
	v := common.NewValidator()
	v.Field(constants.FieldBillSource, m.BillSource, common.Required)
	v.Field(constants.FieldBillGivenBy, m.BillGivenBy, common.Required)
	v.Field(constants.FieldHODApproval, m.HODApproval, common.Required)
	v.Field(constants.FieldFinalApproval, m.FinalApproval, common.Required)
	return v.Error()
}

// Apply writes the fields into rec, overwriting any same-named keys the model produced.
func (m ManualFields) Apply(rec *Record) {
	rec.Set(constants.FieldBillSource, m.BillSource)
	rec.Set(constants.FieldBillGivenBy, m.BillGivenBy)
	rec.Set(constants.FieldHODApproval, m.HODApproval)
	rec.Set(constants.FieldFinalApproval, m.FinalApproval)
}
