package nats

const (
	StreamName = "FILEDROP"

	SubjectFileStored   = "upload.file.stored"
	SubjectFileRejected = "upload.file.rejected"
	SubjectFileSkipped  = "upload.file.skipped"
	SubjectFileFailed   = "upload.file.failed"
	SubjectBatchDone    = "upload.batch.done"

	// SubjectAll matches every upload subject, for consumers.
	SubjectAll = "upload.>"
)

var UploadSubjects = []string{
	SubjectFileStored,
	SubjectFileRejected,
	SubjectFileSkipped,
	SubjectFileFailed,
	SubjectBatchDone,
}

func DLQSubject(subject string) string {
	return "dlq." + subject
}
