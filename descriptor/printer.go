package descriptor

import "github.com/usbtree/usbtree/errs"

// Printer is the class-specific Printer (class ClassPrinter) functional
// descriptor: a list of supported IPP-over-USB versions plus an optional
// vendor string index.
type Printer struct {
	ReleaseNumber uint8
	NumDescriptors uint8
	Descriptors   []PrinterBasicDescriptor
	Raw           []byte
}

func (p *Printer) DescriptorType() uint8 { return uint8(TypeCSInterface) }
func (p *Printer) Bytes() []byte         { return p.Raw }

type PrinterBasicDescriptor struct {
	DescriptorType uint8
	Length         uint8
	Data           []byte
}

const minPrinterLen = 4

func decodePrinter(raw []byte) (Descriptor, error) {
	if len(raw) < minPrinterLen {
		return nil, &errs.DescriptorLengthError{Expected: minPrinterLen, Got: len(raw)}
	}
	p := &Printer{ReleaseNumber: raw[2], NumDescriptors: raw[3], Raw: append([]byte(nil), raw...)}
	pos := 4
	for i := uint8(0); i < p.NumDescriptors && pos+2 <= len(raw); i++ {
		length := int(raw[pos+1])
		if pos+2+length > len(raw) {
			break
		}
		p.Descriptors = append(p.Descriptors, PrinterBasicDescriptor{
			DescriptorType: raw[pos],
			Length:         raw[pos+1],
			Data:           append([]byte(nil), raw[pos+2:pos+2+length]...),
		})
		pos += 2 + length
	}
	return p, nil
}
