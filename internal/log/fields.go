package log

// FieldComponent tags every record with the subsystem that emitted it.
const FieldComponent = "component"

// Component names used across the binaries.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentSMS     = "sms"
	ComponentIngest  = "ingest"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
)
