package tools

import (
	"fmt"
	"reflect"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// ExportToExcel 把结构体切片写入 sheet，表头取 `excel` tag（"-" 跳过，缺省用字段名）
// 新建的 excelize.File 自带 Sheet1，指定其他 sheet 名时直接改名
func ExportToExcel(f *excelize.File, sheet string, data any) error {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("data %T 不是切片", data)
	}

	elemType := v.Type().Elem()
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("data %T 不是结构体切片", data)
	}

	if sheet == "" {
		sheet = defaultSheet
	}
	if err := ensureSheet(f, sheet); err != nil {
		return err
	}

	type fieldInfo struct {
		index  []int
		header string
	}

	var fields []fieldInfo

	var collect func(t reflect.Type, parent []int)
	collect = func(t reflect.Type, parent []int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.PkgPath != "" {
				continue
			}

			idx := append(append([]int(nil), parent...), i)

			if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
				collect(sf.Type, idx)
				continue
			}

			tag := sf.Tag.Get("excel")
			if tag == "-" {
				continue
			}
			if tag == "" {
				tag = sf.Name
			}
			fields = append(fields, fieldInfo{index: idx, header: tag})
		}
	}
	collect(elemType, nil)

	// 表头
	for i, fi := range fields {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, fi.header); err != nil {
			return err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(len([]rune(fi.header))*2 + 4)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}

	// 数据行，nil 指针行跳过但保留行号
	for row := 0; row < v.Len(); row++ {
		elem := v.Index(row)
		if elem.Kind() == reflect.Ptr {
			if elem.IsNil() {
				continue
			}
			elem = elem.Elem()
		}

		for colIndex, fi := range fields {
			fv := elem.FieldByIndex(fi.index)

			var value any
			if fv.Kind() == reflect.Ptr {
				if fv.IsNil() {
					value = ""
				} else {
					value = fv.Elem().Interface()
				}
			} else {
				value = fv.Interface()
			}

			cell, err := excelize.CoordinatesToCellName(colIndex+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureSheet(f *excelize.File, sheet string) error {
	if idx, err := f.GetSheetIndex(sheet); err == nil && idx >= 0 {
		return nil
	}
	if sheets := f.GetSheetList(); len(sheets) == 1 && sheets[0] == defaultSheet {
		return f.SetSheetName(defaultSheet, sheet)
	}
	_, err := f.NewSheet(sheet)
	return err
}
