package build

// PartitionOutput is the structured output for one partition.
type PartitionOutput struct {
	Key    string `json:"key" yaml:"key"`
	Status string `json:"status" yaml:"status"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// FinalOutput is the structured output for the entire build.
type FinalOutput struct {
	RunID      string            `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Status     string            `json:"status" yaml:"status"`
	Output     string            `json:"output,omitempty" yaml:"output,omitempty"`
	Partitions []PartitionOutput `json:"partitions" yaml:"partitions"`
	Stats      Stats             `json:"stats" yaml:"stats"`
}

// Stats provides summary statistics for the build.
type Stats struct {
	TotalPartitions  int      `json:"total_partitions" yaml:"total_partitions"`
	Successful       int      `json:"successful" yaml:"successful"`
	Failed           int      `json:"failed" yaml:"failed"`
	UniqueWords      int      `json:"unique_words" yaml:"unique_words"`
	OutputBytes      int64    `json:"output_bytes" yaml:"output_bytes"`
	TotalTimeSeconds float64  `json:"total_time_seconds" yaml:"total_time_seconds"`
	TopWords         []string `json:"top_words,omitempty" yaml:"top_words,omitempty"`
}
