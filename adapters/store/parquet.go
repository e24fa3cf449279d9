package store

import (
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"ghgpipe/internal/errors"
)

const parquetParallelism = 2

func writeParquet(path string, rows []recordRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create parquet file %s", path)
	}
	pw, err := writer.NewParquetWriter(fw, new(recordRow), parquetParallelism)
	if err != nil {
		fw.Close()
		return errors.Wrapf(err, "failed to create parquet writer for %s", path)
	}
	pw.RowGroupSize = 128 * 1024 * 1024
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			fw.Close()
			return errors.Wrapf(err, "failed to write parquet row to %s", path)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return errors.Wrapf(err, "failed to finalize parquet file %s", path)
	}
	return fw.Close()
}

func readParquet(path string) ([]recordRow, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open parquet file %s", path)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(recordRow), parquetParallelism)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create parquet reader for %s", path)
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	rows := make([]recordRow, num)
	if num > 0 {
		if err := pr.Read(&rows); err != nil {
			return nil, errors.Wrapf(err, "failed to read parquet rows from %s", path)
		}
	}
	return rows, nil
}
