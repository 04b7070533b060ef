package imagestudio

// Level is the severity of a Notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a one-shot, dismissible status message.
type Notification struct {
	Level   Level
	Message string
}

// Messages shown to the user.
const (
	MsgEnterPrompt       = "Enter a prompt!"
	MsgGenerateFailed    = "Error generating the image!"
	MsgNoImageReturned   = "No image returned. Check the endpoint logs."
	MsgGenerated         = "Image generated!"
	MsgNoImageToDownload = "No image to download!"
	MsgDownloaded        = "Image downloaded successfully!"
	MsgDownloadFailed    = "Download failed!"
	MsgNoImageToShare    = "No image to share!"
	MsgShared            = "Image shared!"
	MsgCopied            = "Image copied to clipboard!"
	MsgShareUnsupported  = "Sharing not supported on this device"
	MsgNoImageToSave     = "No image to save!"
	MsgAlreadySaved      = "Image already in gallery!"
	MsgSaved             = "Image saved to gallery!"
	MsgSaveFailed        = "Could not save the image!"
	MsgNoPrompt          = "No previous prompt to regenerate!"
	MsgGalleryEmpty      = "Gallery is already empty!"
	MsgGalleryCleared    = "Gallery cleared successfully!"
)
