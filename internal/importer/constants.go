package importer

// Log messages
const (
	LogMsgItemsImported        = "Items imported"
	LogMsgRequirementsImported = "Requirements imported"
)
