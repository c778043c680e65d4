package core

// InstallEvent is one step of the download, verify and extract pipeline.
// Events for a single install are delivered in order to an InstallSink.
type InstallEvent interface {
	installEvent()
}

// DownloadBegin is sent once before the body is streamed. Current is the
// length of any partial file being resumed.
type DownloadBegin struct {
	Total   int64
	Current int64
}

// DownloadProgress carries the number of bytes present on disk so far.
type DownloadProgress struct {
	Current int64
}

type DownloadFinish struct{}

type VerifyBegin struct {
	Total int64
}

type VerifyProgress struct {
	Current int64
}

type VerifyFinish struct{}

type ExtractBegin struct{}

// ExtractCopy reports a copy performed while relocating extracted files.
type ExtractCopy struct {
	CopyProgress
}

// ExtractWarning is a non-fatal problem hit during extraction.
type ExtractWarning struct {
	Message string
}

type ExtractCleanUp struct{}

type ExtractDone struct{}

func (DownloadBegin) installEvent()    {}
func (DownloadProgress) installEvent() {}
func (DownloadFinish) installEvent()   {}
func (VerifyBegin) installEvent()      {}
func (VerifyProgress) installEvent()   {}
func (VerifyFinish) installEvent()     {}
func (ExtractBegin) installEvent()     {}
func (ExtractCopy) installEvent()      {}
func (ExtractWarning) installEvent()   {}
func (ExtractCleanUp) installEvent()   {}
func (ExtractDone) installEvent()      {}

// InstallSink receives install events. A nil sink discards them.
type InstallSink func(InstallEvent)

// Emit forwards e to the sink if one is set.
func (s InstallSink) Emit(e InstallEvent) {
	if s != nil {
		s(e)
	}
}

// CopyProgress is the cumulative state of a recursive copy.
type CopyProgress struct {
	Copied int64
	Total  int64
}

// RemoveEvent is one step of a recursive removal.
type RemoveEvent interface {
	removeEvent()
}

type RemoveStart struct {
	Total int64
}

// RemoveProgress carries the cumulative regular-file bytes removed.
type RemoveProgress struct {
	Removed int64
}

type RemoveEnd struct{}

func (RemoveStart) removeEvent()    {}
func (RemoveProgress) removeEvent() {}
func (RemoveEnd) removeEvent()      {}

// RemoveSink receives remove events. A nil sink discards them.
type RemoveSink func(RemoveEvent)

// Emit forwards e to the sink if one is set.
func (s RemoveSink) Emit(e RemoveEvent) {
	if s != nil {
		s(e)
	}
}

// DownloadOptions describes one archive to fetch and install.
type DownloadOptions struct {
	DownloadURL string
	AssetName   string
	Size        int64
	InstallPath string
	Version     string
	Sink        InstallSink
}
