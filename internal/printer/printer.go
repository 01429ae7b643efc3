package printer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

// ErrSemImpressora is returned by the null printer.
var ErrSemImpressora = errors.New("printer: nenhuma impressora configurada")

// Printer sends raw ESC/POS bytes to a device.
type Printer interface {
	Print(ctx context.Context, data []byte) error
	// Tipo is "usb", "network" or "none".
	Tipo() string
	IsConnected() bool
}

// ── USB (device file, e.g. /dev/usb/lp0) ─────────────────────────────────────

type usbPrinter struct{ path string }

func NewUSBPrinter(devicePath string) Printer { return &usbPrinter{path: devicePath} }

func (p *usbPrinter) Print(_ context.Context, data []byte) error {
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: abrir %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: escrever em %s: %w", p.path, err)
	}
	return nil
}

func (p *usbPrinter) Tipo() string { return "usb" }

func (p *usbPrinter) IsConnected() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// ── Network (raw TCP, usually port 9100) ─────────────────────────────────────

type networkPrinter struct {
	address string
	timeout time.Duration
}

// NewNetworkPrinter dials address ("host:port") once per job.
func NewNetworkPrinter(address string) Printer {
	return &networkPrinter{address: address, timeout: 5 * time.Second}
}

func (p *networkPrinter) Print(ctx context.Context, data []byte) error {
	dialer := net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("printer: conectar a %s: %w", p.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: escrever em %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Tipo() string { return "network" }

func (p *networkPrinter) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", p.address, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// ── None ─────────────────────────────────────────────────────────────────────

type nullPrinter struct{}

func NewNullPrinter() Printer { return nullPrinter{} }

func (nullPrinter) Print(context.Context, []byte) error { return ErrSemImpressora }

func (nullPrinter) Tipo() string { return "none" }

func (nullPrinter) IsConnected() bool { return false }

// New builds the Printer for PRINTER_TYPE.
func New(tipo, usbPath, address string) (Printer, error) {
	switch tipo {
	case "usb":
		if usbPath == "" {
			return nil, errors.New("printer: PRINTER_USB_PATH é obrigatório para impressora usb")
		}
		return NewUSBPrinter(usbPath), nil
	case "network":
		if address == "" {
			return nil, errors.New("printer: PRINTER_ADDRESS é obrigatório para impressora network")
		}
		return NewNetworkPrinter(address), nil
	case "none", "":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: tipo desconhecido %q (use usb, network ou none)", tipo)
	}
}
