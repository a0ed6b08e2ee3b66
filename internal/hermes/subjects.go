package hermes

const (
	StreamName   = "ADVISOR_EVENTS"
	StreamMaxAge = "168h" // 7 days
)

// StreamSubjects are captured by the JetStream stream.
var StreamSubjects = []string{"advisor.>"}

func SubjectSessionCreated(sessionID string) string { return "advisor.session." + sessionID + ".created" }
func SubjectSessionClosed(sessionID string) string  { return "advisor.session." + sessionID + ".closed" }

func SubjectAnalysisRequested(sessionID string) string { return "advisor.analysis." + sessionID + ".requested" }
func SubjectAnalysisCompleted(sessionID string) string { return "advisor.analysis." + sessionID + ".completed" }
func SubjectAnalysisFailed(sessionID string) string    { return "advisor.analysis." + sessionID + ".failed" }
