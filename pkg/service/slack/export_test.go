package slack

// BuildReportBlocks is exported for testing
var BuildReportBlocks = buildReportBlocks
