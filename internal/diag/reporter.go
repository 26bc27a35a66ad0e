package diag

// Reporter is the minimal contract for receiving diagnostics from the
// lowering and optimization phases. Implementations: BagReporter (collects
// into a Bag), NopReporter, and whatever the driver wires up.
type Reporter interface {
	Report(code Code, sev Severity, where, msg string)
}

// BagReporter writes every diagnostic into a Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, where, msg string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{Severity: sev, Code: code, Where: where, Message: msg})
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, string, string) {}
