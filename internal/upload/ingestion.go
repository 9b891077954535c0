package upload

// Percent milestones of a folder ingestion. The transfer's byte progress
// is scaled into the window between zipDonePercent and uploadDonePercent.
const (
	scanDonePercent   = 20
	zipDonePercent    = 30
	uploadDonePercent = 80
	repoSubmitPercent = 50
	donePercent       = 100
)

// ProgressUpdate is one point of an ingestion's progress sequence.
type ProgressUpdate struct {
	Percent    int
	SentBytes  int64
	TotalBytes int64
}

// Ingestion is a handle on one running ingestion. Progress is a lazy,
// finite sequence; the channel closes once the ingestion settles. Wait
// blocks for the terminal outcome.
type Ingestion struct {
	updates chan ProgressUpdate
	done    chan struct{}

	lastPercent int
	result      *IngestResult
	err         error
}

func newIngestion() *Ingestion {
	return &Ingestion{
		updates:     make(chan ProgressUpdate, 128),
		done:        make(chan struct{}),
		lastPercent: -1,
	}
}

// Progress returns the progress sequence. It is closed when the
// ingestion settles.
func (i *Ingestion) Progress() <-chan ProgressUpdate {
	return i.updates
}

// Wait blocks until the ingestion settles and returns its outcome.
func (i *Ingestion) Wait() (*IngestResult, error) {
	<-i.done
	return i.result, i.err
}

// emit publishes an update without ever blocking the transfer: updates
// that do not move the percent are coalesced, and a slow consumer loses
// intermediate points, never the terminal outcome (which travels through
// Wait).
func (i *Ingestion) emit(update ProgressUpdate) {
	if update.Percent == i.lastPercent {
		return
	}
	i.lastPercent = update.Percent

	select {
	case i.updates <- update:
	default:
	}
}

func (i *Ingestion) emitPercent(percent int) {
	i.emit(ProgressUpdate{Percent: percent})
}

// byteProgress adapts transfer byte counts into percent updates scaled
// into the [from, to] window.
func (i *Ingestion) byteProgress(from, to int) func(sent, total int64) {
	return func(sent, total int64) {
		percent := from
		if total > 0 {
			percent = from + int(int64(to-from)*sent/total)
		}
		i.emit(ProgressUpdate{
			Percent:    percent,
			SentBytes:  sent,
			TotalBytes: total,
		})
	}
}

func (i *Ingestion) succeed(result *IngestResult) {
	i.result = result
	i.emitPercent(donePercent)
}

func (i *Ingestion) fail(err error) {
	i.err = err
}

func (i *Ingestion) finish() {
	close(i.updates)
	close(i.done)
}
