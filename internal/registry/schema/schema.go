// Package schema bundles the draft-04 JSON Schema published for
// company-basic-information and validates documents against it.
package schema

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const basicInformationURL = "company-basic-information.schema.json"

//go:embed company-basic-information.schema.json
var basicInformation []byte

// BasicInformation returns the raw schema document.
func BasicInformation() []byte {
	out := make([]byte, len(basicInformation))
	copy(out, basicInformation)
	return out
}

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(basicInformation))
	if err != nil {
		return nil, fmt.Errorf("parse bundled schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft4)
	if err := c.AddResource(basicInformationURL, doc); err != nil {
		return nil, fmt.Errorf("add bundled schema: %w", err)
	}
	sch, err := c.Compile(basicInformationURL)
	if err != nil {
		return nil, fmt.Errorf("compile bundled schema: %w", err)
	}
	return sch, nil
})

// ValidationError lists every violation found in a document, one entry per
// failing keyword, prefixed with the JSON pointer of the offending value.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "schema validation failed: " + strings.Join(e.Violations, "; ")
}

// ValidateBasicInformation checks a serialized document against the bundled schema.
func ValidateBasicInformation(doc []byte) error {
	sch, err := compiled()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	err = sch.Validate(inst)
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	p := message.NewPrinter(language.English)
	var violations []string
	collect(verr, p, &violations)
	return &ValidationError{Violations: violations}
}

func collect(e *jsonschema.ValidationError, p *message.Printer, out *[]string) {
	if len(e.Causes) == 0 {
		*out = append(*out, "/"+strings.Join(e.InstanceLocation, "/")+": "+e.ErrorKind.LocalizedString(p))
		return
	}
	for _, cause := range e.Causes {
		collect(cause, p, out)
	}
}
