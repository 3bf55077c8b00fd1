package polyring

import "github.com/consensys/gnark-crypto/field/koalabear"

var (
	// ParamsToy is a toy ring Z_q with d = 1.
	// Only for tests and examples.
	ParamsToy = ParametersLiteral{
		Degree:  1,
		Modulus: 12289,
	}

	// ParamsD64Q12289 is a ring of degree 64 with the Falcon prime.
	ParamsD64Q12289 = ParametersLiteral{
		Degree:  64,
		Modulus: 12289,
	}

	// ParamsD64KoalaBear is a ring of degree 64 over the KoalaBear prime 2^31 - 2^24 + 1.
	ParamsD64KoalaBear = ParametersLiteral{
		Degree:  64,
		Modulus: koalabear.Modulus().Uint64(),
	}
)
