package core

// Labels represents key-value metadata extracted from a parsed packet.
type Labels map[string]string

// Label naming constants following the {protocol}.{field} convention.
const (
	LabelSIPMethod     = "sip.method"
	LabelSIPStatusCode = "sip.status_code"
	LabelSIPCallID     = "sip.call_id"
	LabelSIPFromURI    = "sip.from_uri"
	LabelSIPToURI      = "sip.to_uri"
	LabelSIPVia        = "sip.via"        // top-most Via sent-by
	LabelSIPInitial    = "sip.initial"    // "true" when outside any dialog
	LabelSIPViolations = "sip.violations" // sanity violation count (decimal)
)
