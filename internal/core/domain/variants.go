package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Variant is the type-specific payload of an application. Each service type
// has exactly one implementation, registered in serviceRegistry.
type Variant interface {
	ServiceType() ServiceType
	Validate() error
}

// MissingInputError lists required form fields or files that were not supplied.
type MissingInputError struct {
	Names []string
}

func (e *MissingInputError) Error() string {
	return strings.Join(e.Names, ", ") + " required"
}

func requireValues(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return &MissingInputError{Names: missing}
	}
	return nil
}

type PanCard struct {
	FullName     string `json:"fullName"`
	DateOfBirth  string `json:"dateOfBirth"`
	FatherName   string `json:"fatherName"`
	MobileNumber string `json:"mobileNumber"`
	AadharNumber string `json:"aadharNumber"`
	Address      string `json:"address"`
	Photo        string `json:"photo"`
	Signature    string `json:"signature"`
	AadharFile   string `json:"aadharFile"`
}

func (PanCard) ServiceType() ServiceType { return ServicePanCard }

func (v PanCard) Validate() error {
	return requireValues(
		"fullName", v.FullName, "dateOfBirth", v.DateOfBirth, "fatherName", v.FatherName,
		"mobileNumber", v.MobileNumber, "aadharNumber", v.AadharNumber, "address", v.Address,
		"photo", v.Photo, "signature", v.Signature, "aadharFile", v.AadharFile,
	)
}

type VoterCard struct {
	State           string `json:"state"`
	Name            string `json:"name"`
	ReferenceNumber string `json:"referenceNumber"`
	PDFPath         string `json:"pdfPath,omitempty"`
	PDFOriginalName string `json:"pdfOriginalName,omitempty"`
}

func (VoterCard) ServiceType() ServiceType { return ServiceVoterCard }

func (v VoterCard) Validate() error {
	return requireValues("state", v.State, "name", v.Name, "referenceNumber", v.ReferenceNumber)
}

type Rtps struct {
	District        string `json:"district"`
	Block           string `json:"block"`
	ReferenceNumber string `json:"referenceNumber"`
}

func (Rtps) ServiceType() ServiceType { return ServiceRtps }

func (v Rtps) Validate() error {
	return requireValues("district", v.District, "block", v.Block, "referenceNumber", v.ReferenceNumber)
}

type LabourCard struct {
	District          string `json:"district,omitempty"`
	Block             string `json:"block"`
	Name              string `json:"name"`
	ApplicationNumber string `json:"applicationNumber"`
}

func (LabourCard) ServiceType() ServiceType { return ServiceLabourCard }

func (v LabourCard) Validate() error {
	return requireValues("block", v.Block, "name", v.Name, "applicationNumber", v.ApplicationNumber)
}

type ITR struct {
	AadharCardNo string `json:"aadharCardNo"`
	PanCardNo    string `json:"panCardNo"`
	AccountNo    string `json:"accountNo"`
	IFSCCode     string `json:"ifscCode"`
	AadharFile   string `json:"aadharFile"`
	PanCardFile  string `json:"panCardFile"`
	PassbookFile string `json:"passbookFile"`
}

func (ITR) ServiceType() ServiceType { return ServiceITR }

func (v ITR) Validate() error {
	return requireValues(
		"aadharCardNo", v.AadharCardNo, "panCardNo", v.PanCardNo,
		"accountNo", v.AccountNo, "ifscCode", v.IFSCCode,
		"aadharFile", v.AadharFile, "panCardFile", v.PanCardFile, "passbookFile", v.PassbookFile,
	)
}

type JobCard struct {
	Name              string `json:"name"`
	FatherHusbandName string `json:"fatherHusbandName"`
	AadharFile        string `json:"aadharFile"`
	PassbookFile      string `json:"passbookFile"`
}

func (JobCard) ServiceType() ServiceType { return ServiceJobCard }

func (v JobCard) Validate() error {
	return requireValues(
		"name", v.Name, "fatherHusbandName", v.FatherHusbandName,
		"aadharFile", v.AadharFile, "passbookFile", v.PassbookFile,
	)
}

// ServiceDefinition describes one service type: how to build and decode its
// variant, what a submission must contain and what it costs by default.
type ServiceDefinition struct {
	Type           ServiceType
	Label          string
	DefaultPrice   int64 // Paise
	RequiredFields []string
	RequiredFiles  []string
	StorageDir     string // Prefix under permanent storage
	PaidDirect     bool   // Paid at the gateway instead of from the wallet

	decode   func(data []byte) (Variant, error)
	fromForm func(fields, files map[string]string) Variant
}

// MissingInputs returns the required fields and files absent from a submission.
func (d ServiceDefinition) MissingInputs(fields map[string]string, files map[string]bool) []string {
	var missing []string
	for _, f := range d.RequiredFields {
		if strings.TrimSpace(fields[f]) == "" {
			missing = append(missing, f)
		}
	}
	for _, f := range d.RequiredFiles {
		if !files[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// FromForm builds the variant from flat form values and stored file paths.
// Bulk (JSON) services return nil.
func (d ServiceDefinition) FromForm(fields, files map[string]string) Variant {
	if d.fromForm == nil {
		return nil
	}
	return d.fromForm(fields, files)
}

func decodeInto[T Variant](data []byte) (Variant, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

var serviceRegistry = map[ServiceType]ServiceDefinition{
	ServicePanCard: {
		Type:           ServicePanCard,
		Label:          "PAN Card Application",
		DefaultPrice:   12500,
		RequiredFields: []string{"fullName", "dateOfBirth", "fatherName", "mobileNumber", "aadharNumber", "address"},
		RequiredFiles:  []string{"photo", "signature", "aadharFile"},
		StorageDir:     "pancard",
		decode:         decodeInto[PanCard],
		fromForm: func(fields, files map[string]string) Variant {
			return PanCard{
				FullName:     fields["fullName"],
				DateOfBirth:  fields["dateOfBirth"],
				FatherName:   fields["fatherName"],
				MobileNumber: fields["mobileNumber"],
				AadharNumber: fields["aadharNumber"],
				Address:      fields["address"],
				Photo:        files["photo"],
				Signature:    files["signature"],
				AadharFile:   files["aadharFile"],
			}
		},
	},
	ServiceVoterCard: {
		Type:         ServiceVoterCard,
		Label:        "Voter Card PDF",
		DefaultPrice: 3000,
		StorageDir:   "voter",
		decode:       decodeInto[VoterCard],
	},
	ServiceRtps: {
		Type:         ServiceRtps,
		Label:        "RTPS Service",
		DefaultPrice: 37000,
		StorageDir:   "rtps",
		decode:       decodeInto[Rtps],
	},
	ServiceLabourCard: {
		Type:         ServiceLabourCard,
		Label:        "Labour Card Application",
		DefaultPrice: 37000,
		StorageDir:   "labour",
		decode:       decodeInto[LabourCard],
	},
	ServiceITR: {
		Type:           ServiceITR,
		Label:          "ITR Filing Service",
		DefaultPrice:   200,
		RequiredFields: []string{"aadharCardNo", "panCardNo", "accountNo", "ifscCode"},
		RequiredFiles:  []string{"aadharFile", "panCardFile", "passbookFile"},
		StorageDir:     "itr",
		PaidDirect:     true,
		decode:         decodeInto[ITR],
		fromForm: func(fields, files map[string]string) Variant {
			return ITR{
				AadharCardNo: fields["aadharCardNo"],
				PanCardNo:    strings.ToUpper(strings.TrimSpace(fields["panCardNo"])),
				AccountNo:    fields["accountNo"],
				IFSCCode:     strings.ToUpper(strings.TrimSpace(fields["ifscCode"])),
				AadharFile:   files["aadharFile"],
				PanCardFile:  files["panCardFile"],
				PassbookFile: files["passbookFile"],
			}
		},
	},
	ServiceJobCard: {
		Type:           ServiceJobCard,
		Label:          "Job Card Application",
		DefaultPrice:   37000,
		RequiredFields: []string{"name", "fatherHusbandName"},
		RequiredFiles:  []string{"aadharFile", "passbookFile"},
		StorageDir:     "jobcard",
		decode:         decodeInto[JobCard],
		fromForm: func(fields, files map[string]string) Variant {
			return JobCard{
				Name:              fields["name"],
				FatherHusbandName: fields["fatherHusbandName"],
				AadharFile:        files["aadharFile"],
				PassbookFile:      files["passbookFile"],
			}
		},
	},
}

// LookupService returns the definition registered for t.
func LookupService(t ServiceType) (ServiceDefinition, bool) {
	d, ok := serviceRegistry[t]
	return d, ok
}

// WalletServiceTypes returns the service types paid from the wallet, sorted.
func WalletServiceTypes() []ServiceType {
	var types []ServiceType
	for t, d := range serviceRegistry {
		if !d.PaidDirect {
			types = append(types, t)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ServiceTypes returns every registered service type, sorted.
func ServiceTypes() []ServiceType {
	types := make([]ServiceType, 0, len(serviceRegistry))
	for t := range serviceRegistry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// DecodeVariant decodes a stored variant payload of type t.
func DecodeVariant(t ServiceType, data []byte) (Variant, error) {
	d, ok := serviceRegistry[t]
	if !ok {
		return nil, fmt.Errorf("unknown service type %q", t)
	}
	return d.decode(data)
}
