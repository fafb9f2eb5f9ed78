package dataset

// Summary describes a dataset without its rows.
type Summary struct {
	Name       string   `json:"name"`
	Format     string   `json:"format"`
	Columns    []string `json:"columns"`
	Rows       int      `json:"rows"`
	HasEmotion bool     `json:"hasEmotion"`
}

// Catalog is the set of datasets loaded at startup together with the
// per-file failures. It is never modified after construction.
type Catalog struct {
	datasets []*Dataset
	byName   map[string]*Dataset
	errors   []*LoadError
}

// NewCatalog indexes a load result.
func NewCatalog(result Result) *Catalog {
	c := &Catalog{
		datasets: result.Datasets,
		byName:   make(map[string]*Dataset, len(result.Datasets)),
		errors:   result.Errors,
	}
	for _, ds := range result.Datasets {
		c.byName[ds.Name] = ds
	}
	return c
}

// Empty reports whether no dataset was loaded.
func (c *Catalog) Empty() bool {
	return len(c.datasets) == 0
}

// Names returns dataset names in load order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.datasets))
	for i, ds := range c.datasets {
		names[i] = ds.Name
	}
	return names
}

// Find 按名称查找数据集。
func (c *Catalog) Find(name string) (*Dataset, bool) {
	ds, ok := c.byName[name]
	return ds, ok
}

// First returns the first loaded dataset.
func (c *Catalog) First() (*Dataset, bool) {
	if len(c.datasets) == 0 {
		return nil, false
	}
	return c.datasets[0], true
}

// List summarises every dataset in load order.
func (c *Catalog) List() []Summary {
	out := make([]Summary, len(c.datasets))
	for i, ds := range c.datasets {
		out[i] = Summary{
			Name:       ds.Name,
			Format:     ds.Format,
			Columns:    ds.Columns,
			Rows:       ds.Len(),
			HasEmotion: ds.HasEmotion(),
		}
	}
	return out
}

// Errors returns the per-file failures of the load.
func (c *Catalog) Errors() []*LoadError {
	out := make([]*LoadError, len(c.errors))
	copy(out, c.errors)
	return out
}
