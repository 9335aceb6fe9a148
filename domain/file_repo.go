package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	ColDomain       = "Dominio"
	ColRegisteredOn = "Fecha de Registro"
	ColExpiresOn    = "Fecha de Expiración"
	ColRegistrar    = "Registrar"
	ColRegistrant   = "Contacto Registrante"
	ColNameServers  = "NameServers"
	ColLastNotice   = "UltimoAviso"
)

// Header 是存储文件固定的列头顺序。
var Header = []string{
	ColDomain, ColRegisteredOn, ColExpiresOn, ColRegistrar,
	ColRegistrant, ColNameServers, ColLastNotice,
}

const nameServerSep = ", "

// CSVRepository 基于 CSV 文件的记录仓库实现。
type CSVRepository struct {
	path string
}

func NewCSVRepository(path string) *CSVRepository {
	return &CSVRepository{path: path}
}

var _ Repository = (*CSVRepository)(nil)

func (r *CSVRepository) Path() string { return r.path }

// Load 按列名读取记录，缺失的列按空值处理；文件不存在时返回空列表。
func (r *CSVRepository) Load() ([]DomainRecord, error) {
	file, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []DomainRecord{}, nil
		}
		return nil, fmt.Errorf("无法打开记录文件 %s: %w", r.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []DomainRecord{}, nil
		}
		return nil, fmt.Errorf("读取记录文件列头失败 %s: %w", r.path, err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}

	out := []DomainRecord{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取记录文件 %s 出错: %w", r.path, err)
		}

		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		name := cell(ColDomain)
		if name == "" {
			continue
		}
		out = append(out, DomainRecord{
			Domain:       name,
			RegisteredOn: ParseDate(cell(ColRegisteredOn)),
			ExpiresOn:    ParseDate(cell(ColExpiresOn)),
			Registrar:    cell(ColRegistrar),
			Registrant:   cell(ColRegistrant),
			NameServers:  splitNameServers(cell(ColNameServers)),
			LastNotice:   ParseDate(cell(ColLastNotice)),
		})
	}
	return out, nil
}

// Save 先写临时文件再重命名，整体覆盖记录文件。
func (r *CSVRepository) Save(records []DomainRecord) error {
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时记录文件失败: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := csv.NewWriter(tmp)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("写入列头失败: %w", err)
	}
	for _, rec := range records {
		if err := writer.Write(toRow(rec)); err != nil {
			return fmt.Errorf("写入记录 %s 失败: %w", rec.Domain, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("刷新记录文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("关闭临时记录文件失败: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("替换记录文件 %s 失败: %w", r.path, err)
	}
	return nil
}

func toRow(rec DomainRecord) []string {
	return []string{
		rec.Domain,
		rec.RegisteredOn.String(),
		rec.ExpiresOn.String(),
		rec.Registrar,
		rec.Registrant,
		strings.Join(rec.NameServers, nameServerSep),
		rec.LastNotice.String(),
	}
}

func splitNameServers(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, ns := range strings.Split(s, ",") {
		ns = strings.TrimSpace(ns)
		if ns != "" {
			out = append(out, ns)
		}
	}
	return out
}
