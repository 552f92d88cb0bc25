package utils

import (
	"fmt"
	"io"

	"github.com/voxelsplace/voxbuf/codec"
	"github.com/voxelsplace/voxbuf/logging"
	"github.com/voxelsplace/voxbuf/store"
)

func RunStorePut(st *store.Store, name, inPath string) error {
	buf, err := codec.LoadFile(inPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", inPath, err)
	}
	rev, written, err := st.Save(name, buf)
	if err != nil {
		return err
	}
	logging.LogInfo("stored %s rev %s (%d of %d chunks written)", name, rev, written, buf.Len())
	return nil
}

func RunStoreGet(st *store.Store, name, outPath string, opts codec.Options) error {
	buf, rev, err := st.Load(name)
	if err != nil {
		return err
	}
	logging.LogInfo("loaded %s rev %s", name, rev)
	return saveVXB(buf, outPath, opts)
}

func RunStoreLs(st *store.Store, w io.Writer) error {
	names, err := st.Volumes()
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	return nil
}
