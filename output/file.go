package output

import (
	"fmt"
	"os"

	"github.com/nexus-automation/nexusprobe/core"
)

var _ Writer = (*File)(nil)

type File struct {
	fileName  string
	log       core.Logger
	formatter core.Formatter
}

func NewFile(fileName string, formatter core.Formatter, logger core.Logger) *File {
	return &File{
		fileName:  fileName,
		log:       logger,
		formatter: formatter,
	}
}

func (co *File) Write(result *core.Result, from, to int) error {
	out, err := result.Format(co.formatter, from, to)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	file, err := os.Create(co.fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(out); err != nil {
		return fmt.Errorf("failed to write %s: %w", co.fileName, err)
	}

	co.log.Infof("successfully saved %d bytes to %s", len(out), co.fileName)
	return nil
}
