package cli

import (
	"io"

	"gopkg.in/cheggaaa/pb.v1"
)

// progressObserver draws a progress bar which advances as each partition finishes
type progressObserver struct {
	bar *pb.ProgressBar
}

func newProgressObserver(out io.Writer, numPartitions int, prefix string) *progressObserver {
	bar := pb.New(numPartitions)
	bar.Output = out
	bar.ShowSpeed = false
	bar.Prefix(prefix)
	bar.Start()
	return &progressObserver{bar: bar}
}

func (p *progressObserver) PartitionStarted(id int) {}

func (p *progressObserver) PartitionFinished(id int, numRecords int, err error) {
	p.bar.Increment()
}

func (p *progressObserver) finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}
