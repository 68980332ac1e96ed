// Command bscctl drives the header I²C bus (BSC1) of a Raspberry Pi board.
//
//	bscctl [flags] scan
//	bscctl [flags] check <addr>
//	bscctl [flags] get <addr> <reg>
//	bscctl [flags] set <addr> <reg> <value>
//	bscctl [flags] read <addr> <count>
//	bscctl [flags] write <addr> <byte>...
//	bscctl [flags] shtc3
//	bscctl [flags] regs
//
// Numbers accept Go literal syntax (0x40, 0b1010, 64). With -sim the bus
// is simulated and needs no hardware or privileges.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"bscbus/boards"
	"bscbus/bsc"
	"bscbus/bsc/bsctest"
	"bscbus/config"
	"bscbus/errcode"
	"bscbus/gpio"
	"bscbus/mmio"
	"bscbus/x/mathx"

	"tinygo.org/x/drivers/shtc3"
)

var (
	boardName = flag.String("board", boards.Default, "board: "+strings.Join(boards.Names(), ", "))
	clockHz   = flag.Uint("hz", 0, "bus clock in Hz (0 uses the configured rate)")
	fastMode  = flag.Bool("fast", false, "fast mode (up to 400 kHz)")
	cfgPath   = flag.String("config", "", "JSON configuration file")
	simulate  = flag.Bool("sim", false, "use a simulated bus instead of /dev/mem")
	verbose   = flag.Bool("v", false, "log controller events to stderr")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("bscctl: ")

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	f, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	b, closeHW, err := open(f)
	if err != nil {
		log.Fatal(err)
	}

	err = b.TakeFor(func(c *bsc.Controller) error { return c.Initialize(f.ClockHz, f.FastMode) })
	if err == nil {
		err = run(b, flag.Arg(0), flag.Args()[1:], os.Stdout)
	}
	_ = b.Close()
	closeHW()
	if err != nil {
		log.Print(err)
		os.Exit(exitCode(err))
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: bscctl [flags] scan|check|get|set|read|write|shtc3|regs [args]\n")
	flag.PrintDefaults()
}

// loadConfig resolves the file or embedded defaults and applies flag
// overrides.
func loadConfig() (config.File, error) {
	var (
		f   config.File
		err error
	)
	if *cfgPath != "" {
		fh, err := os.Open(*cfgPath)
		if err != nil {
			return config.File{}, err
		}
		defer fh.Close()
		f, err = config.Load(fh)
		if err != nil {
			return config.File{}, err
		}
	} else {
		f, err = config.Default(*boardName)
		if err != nil {
			return config.File{}, err
		}
	}

	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "board":
			f.Board = *boardName
		case "hz":
			if *clockHz != 0 {
				f.ClockHz = uint32(*clockHz)
			}
		case "fast":
			f.FastMode = *fastMode
		}
	})
	if *simulate {
		f.Board = "sim"
	}
	return f, f.Validate()
}

// open builds the Bus over real or simulated hardware. The returned func
// releases the mappings.
func open(f config.File) (*bsc.Bus, func(), error) {
	cfg := bsc.Config{}
	if *verbose {
		cfg.Logger = log.Default()
	}
	board, err := f.Apply(&cfg)
	if err != nil {
		return nil, nil, err
	}

	if *simulate {
		sim := bsctest.New()
		sim.Attach(0x50, &bsctest.RegisterDevice{})
		sim.Attach(shtc3Addr, &simSHTC3{})
		cfg.Pins = bsctest.Pins()
		b, err := bsc.New(sim, cfg)
		return b, func() {}, err
	}

	regs, err := mmio.Map(mmio.DevMem, board.BSC1(), bsc.BlockSize)
	if err != nil {
		return nil, nil, err
	}
	gw, err := mmio.Map(mmio.DevMem, board.GPIO(), gpio.BlockSize)
	if err != nil {
		regs.Close()
		return nil, nil, err
	}
	cfg.Pins = gpio.NewRegistry(board, gpio.FSEL{W: gw})
	b, err := bsc.New(regs, cfg)
	if err != nil {
		regs.Close()
		gw.Close()
		return nil, nil, err
	}
	return b, func() { regs.Close(); gw.Close() }, nil
}

func run(b *bsc.Bus, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "scan":
		found, err := bsc.Use(b, func(c *bsc.Controller) ([]bsc.Addr, error) { return c.Scan() })
		if err != nil {
			return err
		}
		for _, a := range found {
			fmt.Fprintln(out, a)
		}
		return nil

	case "check":
		a, err := addrArg(args, 1)
		if err != nil {
			return err
		}
		if err := b.TakeFor(func(c *bsc.Controller) error { return c.CheckDevice(a) }); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s present\n", a)
		return nil

	case "get":
		a, err := addrArg(args, 2)
		if err != nil {
			return err
		}
		reg, err := byteArg(args[1])
		if err != nil {
			return err
		}
		v, err := bsc.Use(b, func(c *bsc.Controller) (byte, error) { return c.ReadRegisterU8(a, reg) })
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "0x%02x\n", v)
		return nil

	case "set":
		a, err := addrArg(args, 3)
		if err != nil {
			return err
		}
		reg, err := byteArg(args[1])
		if err != nil {
			return err
		}
		v, err := byteArg(args[2])
		if err != nil {
			return err
		}
		return b.TakeFor(func(c *bsc.Controller) error { return c.WriteRegisterU8(a, reg, v) })

	case "read":
		a, err := addrArg(args, 2)
		if err != nil {
			return err
		}
		n, err := strconv.ParseUint(args[1], 0, 16)
		if err != nil {
			return usageErr("count: " + err.Error())
		}
		buf := make([]byte, n)
		if _, err := bsc.Use(b, func(c *bsc.Controller) (int, error) { return c.ReadBytes(a, buf) }); err != nil {
			return err
		}
		fmt.Fprintf(out, "% x\n", buf)
		return nil

	case "write":
		if len(args) < 2 {
			return usageErr("write <addr> <byte>...")
		}
		a, err := addrArg(args, 1)
		if err != nil {
			return err
		}
		data := make([]byte, 0, len(args)-1)
		for _, s := range args[1:] {
			v, err := byteArg(s)
			if err != nil {
				return err
			}
			data = append(data, v)
		}
		_, err = bsc.Use(b, func(c *bsc.Controller) (int, error) { return c.WriteBytes(a, data) })
		return err

	case "shtc3":
		return readSHTC3(b, out)

	case "regs":
		r, _ := bsc.Use(b, func(c *bsc.Controller) (bsc.Regs, error) { return c.Registers(), nil })
		fmt.Fprintln(out, r)
		return nil
	}
	return usageErr("unknown command " + strconv.Quote(cmd))
}

// readSHTC3 samples a Sensirion SHTC3 through the upstream TinyGo driver.
func readSHTC3(b *bsc.Bus, out io.Writer) error {
	dev := shtc3.New(b.I2C())
	if err := dev.WakeUp(); err != nil {
		return err
	}
	defer func() { _ = dev.Sleep() }()

	tmc, rhx100, err := dev.ReadTemperatureHumidity()
	if err != nil {
		return err
	}
	// tmc is milli-°C; report deci-°C. Clamp ranges.
	decic := mathx.Clamp(tmc/100, -32768, 32767)
	rhx100 = mathx.Clamp(rhx100, 0, 10000)
	fmt.Fprintf(out, "temperature %.1f C\nhumidity %.2f %%RH\n", float64(decic)/10, float64(rhx100)/100)
	return nil
}

type usageErr string

func (e usageErr) Error() string { return "usage: " + string(e) }

// addrArg parses args[0] as a device address after checking that want
// arguments are present.
func addrArg(args []string, want int) (bsc.Addr, error) {
	if len(args) < want {
		return 0, usageErr(fmt.Sprintf("expected %d argument(s)", want))
	}
	v, err := strconv.ParseInt(args[0], 0, 16)
	if err != nil {
		return 0, usageErr("address: " + err.Error())
	}
	return bsc.NewAddr(int(v))
}

func byteArg(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, usageErr(err.Error())
	}
	return byte(v), nil
}

// exitCode maps outcomes to process status: 1 for bus or device errors,
// 2 for bad invocations, 3 when the device simply is not there.
func exitCode(err error) int {
	var u usageErr
	if errors.As(err, &u) {
		return 2
	}
	switch errcode.Of(err) {
	case errcode.DeviceNotPresent, errcode.NoAcknowledge:
		return 3
	case errcode.InvalidAddress, errcode.InvalidConfiguration:
		return 2
	}
	return 1
}
