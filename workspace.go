package splitmerge

// A Workspace is scratch storage which owns every intermediate dataset created
// during one pipeline run. Workspaces must tolerate the concurrent creation of
// distinct datasets, and never allow a dataset name to be reused.
type Workspace interface {
	ID() string                                                     // ID returns a unique identifier for this Workspace
	CreateDataset(name string, schema Schema) (RecordWriter, error) // CreateDataset begins writing a new dataset. Fails if the name is already in use.
	OpenDataset(name string) (Dataset, error)                       // OpenDataset opens a committed dataset for reading
	RemoveDataset(name string) error                                // RemoveDataset deletes a dataset
	Datasets() []string                                             // Datasets lists the committed datasets in this Workspace, sorted by name
	Destroy() error                                                 // Destroy removes the Workspace and everything in it
}
